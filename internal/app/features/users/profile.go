// internal/app/features/users/profile.go

package users

import (
	"net/http"
	"net/mail"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
)

// HandleProfile returns the authenticated user's own record.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.Users.FindByID(ctx, actor.ID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// HandleUpdateProfile changes the caller's username or email. A changed
// email stays on the record unverified-flagged until re-confirmed.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var req updateProfileRequest
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
		set["is_email_verified"] = false
	}
	if len(set) == 0 {
		httpjson.Fail(w, h.Log, apierr.Validation("nothing to update"))
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	if err := h.Users.Update(ctx, actor.ID, set); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	u, err := h.Users.FindByID(ctx, actor.ID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}
