// internal/app/features/groups/crud.go

package groups

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
	"github.com/imagenix/mediateca/internal/domain/models"
)

var strict = bluemonday.StrictPolicy()

func pathID(r *http.Request, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		return primitive.NilObjectID, apierr.Validation("invalid id")
	}
	return id, nil
}

// HandleList returns all groups as summaries.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	out, err := h.Groups.List(ctx)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, out)
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate creates an empty group.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var req groupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	req.Name = strings.TrimSpace(strict.Sanitize(req.Name))
	if req.Name == "" {
		httpjson.Fail(w, h.Log, apierr.Validation("group name is required"))
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	g := &models.Group{
		Name:        req.Name,
		Description: strict.Sanitize(req.Description),
		CreatedBy:   actor.ID,
	}
	if err := h.Groups.Create(ctx, g); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, g)
}

// HandleUpdate renames a group or changes its description.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	set := bson.M{}
	if req.Name != nil {
		name := strings.TrimSpace(strict.Sanitize(*req.Name))
		if name == "" {
			httpjson.Fail(w, h.Log, apierr.Validation("group name cannot be empty"))
			return
		}
		set["name"] = name
	}
	if req.Description != nil {
		set["description"] = strict.Sanitize(*req.Description)
	}
	if len(set) == 0 {
		httpjson.Fail(w, h.Log, apierr.Validation("nothing to update"))
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Groups.Update(ctx, id, set); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	g, err := h.Groups.FindByID(ctx, id)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, g)
}

// HandleDelete removes an empty group, unassigning it everywhere.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	if err := h.Groups.Delete(ctx, id); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleAddMember adds a user to a group.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Groups.AddMember(ctx, groupID, userID); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}

// HandleRemoveMember removes a user from a group.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Groups.RemoveMember(ctx, groupID, userID); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}
