// internal/app/features/files/upload.go

package files

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/filenames"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/limits"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
	"github.com/imagenix/mediateca/internal/app/system/visibility"
	"github.com/imagenix/mediateca/internal/domain/models"
)

var strict = bluemonday.StrictPolicy()

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apierr.Validation("invalid id")
	}
	return id, nil
}

// uploadTarget resolves and validates the shared form fields of upload
// and link registration.
type uploadTarget struct {
	folder primitive.ObjectID
	group  *primitive.ObjectID
	tagIDs []primitive.ObjectID
	desc   string
}

func (h *Handler) resolveTarget(r *http.Request, actor visibility.Actor, folderHex, groupHex, description string, tagNames []string) (*uploadTarget, error) {
	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	folderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(folderHex))
	if err != nil {
		return nil, apierr.Validation("a valid folder id is required")
	}
	if _, err := h.Folders.FindByID(ctx, folderID); err != nil {
		return nil, err
	}

	t := &uploadTarget{folder: folderID, desc: strict.Sanitize(description)}

	if strings.TrimSpace(groupHex) != "" {
		groupID, err := primitive.ObjectIDFromHex(strings.TrimSpace(groupHex))
		if err != nil {
			return nil, apierr.Validation("invalid group id")
		}
		if _, err := h.Groups.FindByID(ctx, groupID); err != nil {
			return nil, err
		}
		t.group = &groupID
	}

	t.tagIDs, err = h.Tags.EnsureAll(ctx, tagNames, actor.ID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// splitTags accepts a comma-separated field.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// HandleUpload stores a multipart upload and registers its metadata. The
// object is written first; if the metadata insert fails the object is
// released again so nothing is left orphaned.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxUploadBytes)
	if err := r.ParseMultipartForm(limits.MaxMultipartMemory); err != nil {
		httpjson.Fail(w, h.Log, apierr.Validation("malformed multipart request"))
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		httpjson.Fail(w, h.Log, apierr.Validation("a file part is required"))
		return
	}
	defer src.Close()

	target, err := h.resolveTarget(r, actor,
		r.FormValue("folder"), r.FormValue("assigned_group"),
		r.FormValue("description"), splitTags(r.FormValue("tags")))
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	name := filenames.Sanitize(header.Filename)

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Long)
	defer cancel()

	obj, err := h.Objects.Put(ctx, name, src, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		httpjson.Fail(w, h.Log, apierr.External("object storage unavailable", err))
		return
	}

	f := &models.File{
		Filename:      name,
		Description:   target.desc,
		FileType:      filenames.TypeForName(name),
		StorageID:     obj.ID,
		SecureURL:     obj.URL,
		Size:          obj.Size,
		Folder:        target.folder,
		Tags:          target.tagIDs,
		UploadedBy:    actor.ID,
		AssignedGroup: target.group,
	}
	if err := h.Files.Create(ctx, f); err != nil {
		if derr := h.Objects.Delete(ctx, obj.ID); derr != nil {
			h.Log.Warn("orphaned object after failed insert",
				zap.String("object_id", obj.ID), zap.Error(derr))
		}
		httpjson.Fail(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusCreated, f)
}
