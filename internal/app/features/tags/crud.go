// internal/app/features/tags/crud.go

package tags

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
)

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apierr.Validation("invalid id")
	}
	return id, nil
}

// HandleList returns all tags.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	tags, err := h.Tags.List(ctx)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, tags)
}

type tagRequest struct {
	Name string `json:"name"`
}

// HandleCreate finds or creates a tag by name, so repeated creates of the
// same name return the same tag.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var req tagRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	tag, err := h.Tags.FindOrCreate(ctx, req.Name, actor.ID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, tag)
}

// HandleRename changes a tag's name.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var req tagRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Tags.Rename(ctx, id, req.Name); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	tag, err := h.Tags.FindByID(ctx, id)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, tag)
}

// HandleDelete removes a tag, detaching it from every file.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	if err := h.Tags.Delete(ctx, id); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}
