// internal/app/features/users/handler.go

// Package users implements registration, login, email verification,
// password recovery, profile access and admin account management.
package users

import (
	"go.uber.org/zap"

	groupstore "github.com/imagenix/mediateca/internal/app/store/groups"
	userstore "github.com/imagenix/mediateca/internal/app/store/users"
	"github.com/imagenix/mediateca/internal/app/system/authn"
	"github.com/imagenix/mediateca/internal/app/system/mailer"
)

// Handler is the shared dependency container for the users feature.
type Handler struct {
	Users   *userstore.Store
	Groups  *groupstore.Store
	Signer  *authn.Signer
	Mail    mailer.Sender
	BaseURL string
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, groups *groupstore.Store, signer *authn.Signer, mail mailer.Sender, baseURL string, log *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		Groups:  groups,
		Signer:  signer,
		Mail:    mail,
		BaseURL: baseURL,
		Log:     log,
	}
}
