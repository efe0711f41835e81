// internal/app/features/users/verify.go

package users

import (
	"net/http"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
)

// HandleVerifyEmail consumes the emailed verification token.
func (h *Handler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpjson.Fail(w, h.Log, apierr.Validation("token is required"))
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.Users.VerifyEmailByTokenHash(ctx, hashToken(token))
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}
