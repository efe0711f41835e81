// internal/app/features/files/link.go

package files

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/waffle/pantry/urlutil"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/filenames"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
	"github.com/imagenix/mediateca/internal/domain/models"
)

type linkRequest struct {
	Filename      string   `json:"filename"`
	URL           string   `json:"url"`
	FileType      string   `json:"file_type"`
	Description   string   `json:"description"`
	Folder        string   `json:"folder"`
	Tags          []string `json:"tags"`
	AssignedGroup string   `json:"assigned_group"`
}

// HandleLink registers an external URL as a library entry. No object is
// stored; the record carries the URL directly and size zero.
func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var req linkRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	if !urlutil.IsValidAbsHTTPURL(req.URL) {
		httpjson.Fail(w, h.Log, apierr.Validation("a valid absolute http(s) url is required"))
		return
	}
	if req.FileType == "" {
		req.FileType = linkType(req.URL)
	}
	if !models.IsLinkType(req.FileType) {
		httpjson.Fail(w, h.Log, apierr.Validation("file_type must be video_link or generic_link"))
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		httpjson.Fail(w, h.Log, apierr.Validation("filename is required"))
		return
	}
	name := filenames.Sanitize(req.Filename)

	target, err := h.resolveTarget(r, actor, req.Folder, req.AssignedGroup, req.Description, req.Tags)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	f := &models.File{
		Filename:      name,
		Description:   target.desc,
		FileType:      req.FileType,
		SecureURL:     req.URL,
		Size:          0,
		Folder:        target.folder,
		Tags:          target.tagIDs,
		UploadedBy:    actor.ID,
		AssignedGroup: target.group,
	}
	if err := h.Files.Create(ctx, f); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, f)
}

// linkType classifies a URL by host. YouTube links become video links,
// everything else a generic link.
func linkType(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return models.FileTypeGenericLink
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "youtu.be":
		return models.FileTypeVideoLink
	}
	return models.FileTypeGenericLink
}
