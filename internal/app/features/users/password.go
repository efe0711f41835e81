// internal/app/features/users/password.go

package users

import (
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/mailer"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
)

type forgotRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword issues a reset token. The response is identical
// whether or not the email belongs to an account.
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	u, err := h.Users.FindByEmail(ctx, req.Email)
	if err == nil {
		token, hash, terr := newToken()
		if terr == nil {
			terr = h.Users.SetPasswordResetToken(ctx, u.ID, hash, time.Now().UTC().Add(resetTokenTTL))
		}
		if terr == nil {
			terr = h.Mail.Send(ctx, mailer.PasswordReset(h.BaseURL, u.Email, token))
		}
		if terr != nil {
			h.Log.Warn("password reset email failed", zap.String("email", u.Email), zap.Error(terr))
		}
	} else if !apierr.Is(err, apierr.KindNotFound) {
		httpjson.Fail(w, h.Log, err)
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]string{
		"message": "if the address exists, a reset link has been sent",
	})
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// HandleResetPassword consumes a reset token and sets the new password.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if req.Token == "" {
		httpjson.Fail(w, h.Log, apierr.Validation("token is required"))
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.Fail(w, h.Log, apierr.Validation("password must be at least %d characters", minPasswordLen))
		return
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		httpjson.Fail(w, h.Log, apierr.Internal(fmt.Errorf("hash password: %w", err)))
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.Users.ResetPasswordByTokenHash(ctx, hashToken(req.Token), string(pwHash))
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, u)
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

// HandleChangePassword lets an authenticated user rotate their password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var req changePasswordRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if len(req.New) < minPasswordLen {
		httpjson.Fail(w, h.Log, apierr.Validation("password must be at least %d characters", minPasswordLen))
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Short)
	defer cancel()

	u, err := h.Users.FindByID(ctx, actor.ID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Current)) != nil {
		httpjson.Fail(w, h.Log, apierr.Authentication("current password is incorrect"))
		return
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.New), bcryptCost)
	if err != nil {
		httpjson.Fail(w, h.Log, apierr.Internal(fmt.Errorf("hash password: %w", err)))
		return
	}
	if err := h.Users.Update(ctx, u.ID, bson.M{"password": string(pwHash)}); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.NoContent(w)
}
