// internal/app/features/groups/routes.go

package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/domain/models"
)

// Routes mounts the groups feature. Listing is open to staff roles that
// assign groups; mutations are admin only.
func Routes(h *Handler, authed func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authed)

	r.Group(func(lr chi.Router) {
		lr.Use(authz.RequireRoles(h.Log, models.RoleAdmin, models.RoleDocente))
		lr.Get("/", h.HandleList)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(authz.RequireRoles(h.Log, models.RoleAdmin))
		ar.Post("/", h.HandleCreate)
		ar.Put("/{id}", h.HandleUpdate)
		ar.Delete("/{id}", h.HandleDelete)
		ar.Post("/{id}/members/{userID}", h.HandleAddMember)
		ar.Delete("/{id}/members/{userID}", h.HandleRemoveMember)
	})

	return r
}
