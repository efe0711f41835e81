// internal/app/features/folders/routes.go

package folders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the folders feature. Any authenticated user may create
// folders; listing applies per-role visibility, and update/delete are
// limited to the admin-or-creator check in the handlers.
func Routes(h *Handler, authed func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authed)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
