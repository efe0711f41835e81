// internal/app/features/health/health.go

// Package health serves the liveness endpoint.
package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
)

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleHealth)
	return r
}

// HandleHealth reports service and database liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.Context(r.Context(), timeouts.Ping)
	defer cancel()

	status := "ok"
	dbStatus := "ok"
	code := http.StatusOK
	if err := h.DB.Client().Ping(ctx, readpref.Primary()); err != nil {
		status, dbStatus = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
		h.Log.Warn("health check: mongo unreachable", zap.Error(err))
	}

	httpjson.Respond(w, code, map[string]string{"status": status, "database": dbStatus})
}
