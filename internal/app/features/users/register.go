// internal/app/features/users/register.go

package users

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/mailer"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
	"github.com/imagenix/mediateca/internal/domain/models"
)

var strict = bluemonday.StrictPolicy()

const (
	minPasswordLen = 8
	bcryptCost     = 10
	verifyTokenTTL = 24 * time.Hour
	resetTokenTTL  = time.Hour
)

// newToken returns a fresh random token and the sha256 hex digest that is
// stored in its place.
func newToken() (token, hash string, err error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", "", apierr.Internal(fmt.Errorf("generate token: %w", err))
	}
	token = hex.EncodeToString(raw[:])
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account with the default role and emails a
// verification link.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	req.Username = strings.TrimSpace(strict.Sanitize(req.Username))
	if req.Username == "" {
		httpjson.Fail(w, h.Log, apierr.Validation("username is required"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		httpjson.Fail(w, h.Log, apierr.Validation("a valid email is required"))
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

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(pwHash),
		Role:         models.RoleUsuario,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	token, hash, err := newToken()
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := h.Users.SetEmailVerifyToken(ctx, u.ID, hash, time.Now().UTC().Add(verifyTokenTTL)); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	if err := h.Mail.Send(ctx, mailer.Verification(h.BaseURL, u.Email, token)); err != nil {
		// The account exists; the user can request a new link later.
		h.Log.Warn("verification email failed", zap.String("email", u.Email), zap.Error(err))
	}

	httpjson.Respond(w, http.StatusCreated, u)
}
