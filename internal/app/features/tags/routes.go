// internal/app/features/tags/routes.go

package tags

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/domain/models"
)

// Routes mounts the tags feature. Any authenticated user can list tags;
// staff can create them; renames and deletes are admin only.
func Routes(h *Handler, authed func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authed)

	r.Get("/", h.HandleList)

	r.Group(func(sr chi.Router) {
		sr.Use(authz.RequireRoles(h.Log, models.RoleAdmin, models.RoleDocente))
		sr.Post("/", h.HandleCreate)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(authz.RequireRoles(h.Log, models.RoleAdmin))
		ar.Put("/{id}", h.HandleRename)
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}
