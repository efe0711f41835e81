// internal/app/features/folders/handler.go

// Package folders implements the hierarchical folder tree.
package folders

import (
	"go.uber.org/zap"

	folderstore "github.com/imagenix/mediateca/internal/app/store/folders"
	groupstore "github.com/imagenix/mediateca/internal/app/store/groups"
)

// Handler is the shared dependency container for the folders feature.
type Handler struct {
	Folders *folderstore.Store
	Groups  *groupstore.Store
	Log     *zap.Logger
}

func NewHandler(folders *folderstore.Store, groups *groupstore.Store, log *zap.Logger) *Handler {
	return &Handler{Folders: folders, Groups: groups, Log: log}
}
