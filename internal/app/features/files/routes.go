// internal/app/features/files/routes.go

package files

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/domain/models"
)

// Routes mounts the files feature. Listing applies per-role visibility;
// registering and mutating files is limited to staff roles.
func Routes(h *Handler, authed func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authed)

	r.Get("/", h.HandleList)

	r.Group(func(sr chi.Router) {
		sr.Use(authz.RequireRoles(h.Log, models.RoleAdmin, models.RoleDocente))
		sr.Post("/upload", h.HandleUpload)
		sr.Post("/link", h.HandleLink)
		sr.Put("/{id}", h.HandleUpdate)
		sr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
