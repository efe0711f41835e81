// internal/app/features/users/routes.go

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/domain/models"
)

// Routes mounts the users feature. authed is the bearer-token middleware.
func Routes(h *Handler, authed func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public: account lifecycle before a token exists.
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Get("/verify-email", h.HandleVerifyEmail)
	r.Post("/forgot-password", h.HandleForgotPassword)
	r.Post("/reset-password", h.HandleResetPassword)

	r.Group(func(pr chi.Router) {
		pr.Use(authed)

		pr.Get("/me", h.HandleProfile)
		pr.Put("/me", h.HandleUpdateProfile)
		pr.Put("/me/password", h.HandleChangePassword)

		pr.Group(func(ar chi.Router) {
			ar.Use(authz.RequireRoles(h.Log, models.RoleAdmin))
			ar.Get("/", h.HandleList)
			ar.Get("/{id}", h.HandleGet)
			ar.Put("/{id}", h.HandleAdminUpdate)
			ar.Delete("/{id}", h.HandleDelete)
		})
	})

	return r
}
