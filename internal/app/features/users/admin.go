// internal/app/features/users/admin.go

package users

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
	"github.com/imagenix/mediateca/internal/domain/models"
)

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apierr.Validation("invalid id")
	}
	return id, nil
}

// HandleList returns every account. Admin only.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, users)
}

// HandleGet returns a single account. Admin only.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.Users.FindByID(ctx, id)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}

type adminUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
}

// HandleAdminUpdate changes another account's username, email or role.
// An admin cannot demote their own account, which keeps at least one
// admin reachable. Group membership is managed through the groups
// endpoints so both sides of the mirror stay paired.
func (h *Handler) HandleAdminUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req adminUpdateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	set := bson.M{}
	if req.Username != nil {
		name := strings.TrimSpace(strict.Sanitize(*req.Username))
		if name == "" {
			httpjson.Fail(w, h.Log, apierr.Validation("username cannot be empty"))
			return
		}
		set["username"] = name
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			httpjson.Fail(w, h.Log, apierr.Validation("a valid email is required"))
			return
		}
		set["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			httpjson.Fail(w, h.Log, apierr.Validation("unknown role %q", *req.Role))
			return
		}
		if id == actor.ID && *req.Role != models.RoleAdmin {
			httpjson.Fail(w, h.Log, apierr.Validation("cannot change your own admin role"))
			return
		}
		set["role"] = *req.Role
	}
	if len(set) == 0 {
		httpjson.Fail(w, h.Log, apierr.Validation("nothing to update"))
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Users.Update(ctx, id, set); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	u, err := h.Users.FindByID(ctx, id)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}

// HandleDelete removes an account and strips it from every group.
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
	if id == actor.ID {
		httpjson.Fail(w, h.Log, apierr.Validation("cannot delete your own account"))
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	if err := h.Groups.RemoveUserEverywhere(ctx, id); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}
