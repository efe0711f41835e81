// internal/app/features/groups/handler.go

// Package groups implements group management and membership.
package groups

import (
	"go.uber.org/zap"

	groupstore "github.com/imagenix/mediateca/internal/app/store/groups"
)

// Handler is the shared dependency container for the groups feature.
type Handler struct {
	Groups *groupstore.Store
	Log    *zap.Logger
}

func NewHandler(groups *groupstore.Store, log *zap.Logger) *Handler {
	return &Handler{Groups: groups, Log: log}
}
