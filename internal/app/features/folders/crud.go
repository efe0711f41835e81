// internal/app/features/folders/crud.go

package folders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
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

// HandleList returns the folders under ?parent= (roots when omitted) that
// the caller is allowed to see.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	perm, err := visibility.Permission(actor, visibility.OwnerCreatedBy)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var parent *primitive.ObjectID
	if raw := r.URL.Query().Get("parent"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.Fail(w, h.Log, apierr.Validation("invalid parent id"))
			return
		}
		parent = &id
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	out, err := h.Folders.ListChildren(ctx, parent, perm)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, out)
}

type folderRequest struct {
	Name          string  `json:"name"`
	ParentFolder  *string `json:"parent_folder"`
	AssignedGroup *string `json:"assigned_group"`
}

// HandleCreate creates a folder, optionally under a parent and optionally
// restricted to a group.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var req folderRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	name := strings.TrimSpace(strict.Sanitize(req.Name))
	if name == "" {
		httpjson.Fail(w, h.Log, apierr.Validation("folder name is required"))
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	f := &models.Folder{Name: name, CreatedBy: actor.ID}

	if req.ParentFolder != nil && *req.ParentFolder != "" {
		parentID, err := primitive.ObjectIDFromHex(*req.ParentFolder)
		if err != nil {
			httpjson.Fail(w, h.Log, apierr.Validation("invalid parent folder id"))
			return
		}
		if _, err := h.Folders.FindByID(ctx, parentID); err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
		f.ParentFolder = &parentID
	}
	if req.AssignedGroup != nil && *req.AssignedGroup != "" {
		groupID, err := primitive.ObjectIDFromHex(*req.AssignedGroup)
		if err != nil {
			httpjson.Fail(w, h.Log, apierr.Validation("invalid group id"))
			return
		}
		if _, err := h.Groups.FindByID(ctx, groupID); err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
		f.AssignedGroup = &groupID
	}

	if err := h.Folders.Create(ctx, f); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, f)
}

// canMutate reports whether the actor may modify a folder: admins always,
// everyone else only for folders they created.
func canMutate(actor visibility.Actor, f *models.Folder) error {
	if actor.IsAdmin() || f.CreatedBy == actor.ID {
		return nil
	}
	return apierr.Authorization("not the folder owner")
}

// HandleUpdate renames a folder or changes its group assignment.
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

	var req struct {
		Name          *string `json:"name"`
		AssignedGroup *string `json:"assigned_group"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	f, err := h.Folders.FindByID(ctx, id)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := canMutate(actor, f); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	set := bson.M{}
	if req.Name != nil {
		name := strings.TrimSpace(strict.Sanitize(*req.Name))
		if name == "" {
			httpjson.Fail(w, h.Log, apierr.Validation("folder name cannot be empty"))
			return
		}
		set["name"] = name
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

	if err := h.Folders.Update(ctx, id, set); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	updated, err := h.Folders.FindByID(ctx, id)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, updated)
}

// HandleDelete removes an empty folder. Deleting an absent folder
// succeeds.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	f, err := h.Folders.FindByID(ctx, id)
	if err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			httpjson.NoContent(w)
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := canMutate(actor, f); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	if err := h.Folders.Delete(ctx, id); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}
