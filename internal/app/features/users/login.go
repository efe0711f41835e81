// internal/app/features/users/login.go

package users

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
	"github.com/imagenix/mediateca/internal/domain/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// HandleLogin exchanges email and password for a bearer token. Unknown
// accounts and wrong passwords produce the same message.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			httpjson.Fail(w, h.Log, apierr.Authentication("invalid credentials"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		httpjson.Fail(w, h.Log, apierr.Authentication("invalid credentials"))
		return
	}
	if !u.IsEmailVerified {
		httpjson.Fail(w, h.Log, apierr.Authentication("email address not verified"))
		return
	}

	token, err := h.Signer.Sign(u)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, loginResponse{Token: token, User: u})
}
