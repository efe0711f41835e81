// internal/app/features/tags/handler.go

// Package tags implements tag listing and admin tag maintenance.
package tags

import (
	"go.uber.org/zap"

	tagstore "github.com/imagenix/mediateca/internal/app/store/tags"
)

// Handler is the shared dependency container for the tags feature.
type Handler struct {
	Tags *tagstore.Store
	Log  *zap.Logger
}

func NewHandler(tags *tagstore.Store, log *zap.Logger) *Handler {
	return &Handler{Tags: tags, Log: log}
}
