// internal/app/features/files/update.go

package files

import (
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/filenames"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
	"github.com/imagenix/mediateca/internal/app/system/visibility"
	"github.com/imagenix/mediateca/internal/domain/models"
)

type updateRequest struct {
	Filename      *string   `json:"filename"`
	Description   *string   `json:"description"`
	Folder        *string   `json:"folder"`
	Tags          *[]string `json:"tags"`
	AssignedGroup *string   `json:"assigned_group"`
}

// canMutate reports whether the actor may modify a file: admins always,
// docentes only for files they uploaded.
func canMutate(actor visibility.Actor, f *models.File) error {
	if actor.IsAdmin() || f.UploadedBy == actor.ID {
		return nil
	}
	return apierr.Authorization("not the file owner")
}

// HandleUpdate edits a file's metadata. An omitted tags field leaves the
// tag set untouched; an empty array clears it.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	f, err := h.Files.FindByID(ctx, id)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := canMutate(actor, f); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	set := bson.M{}
	if req.Filename != nil {
		if strings.TrimSpace(*req.Filename) == "" {
			httpjson.Fail(w, h.Log, apierr.Validation("filename cannot be empty"))
			return
		}
		set["filename"] = filenames.Sanitize(*req.Filename)
	}
	if req.Description != nil {
		set["description"] = strict.Sanitize(*req.Description)
	}
	if req.Folder != nil {
		folderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(*req.Folder))
		if err != nil {
			httpjson.Fail(w, h.Log, apierr.Validation("invalid folder id"))
			return
		}
		if _, err := h.Folders.FindByID(ctx, folderID); err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
		set["folder"] = folderID
	}
	if req.Tags != nil {
		tagIDs, err := h.Tags.EnsureAll(ctx, *req.Tags, actor.ID)
		if err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
		set["tags"] = tagIDs
	}
	if req.AssignedGroup != nil {
		if *req.AssignedGroup == "" {
			set["assigned_group"] = nil
		} else {
			groupID, err := primitive.ObjectIDFromHex(*req.AssignedGroup)
			if err != nil {
				httpjson.Fail(w, h.Log, apierr.Validation("invalid group id"))
				return
			}
			if _, err := h.Groups.FindByID(ctx, groupID); err != nil {
				httpjson.Fail(w, h.Log, err)
				return
			}
			set["assigned_group"] = groupID
		}
	}
	if len(set) == 0 {
		httpjson.Fail(w, h.Log, apierr.Validation("nothing to update"))
		return
	}

	updated, err := h.Files.Update(ctx, id, set)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, updated)
}
