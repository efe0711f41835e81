// internal/app/features/files/handler.go

// Package files implements uploads, external link registration, criteria
// listings and file lifecycle.
package files

import (
	"go.uber.org/zap"

	filestore "github.com/imagenix/mediateca/internal/app/store/files"
	folderstore "github.com/imagenix/mediateca/internal/app/store/folders"
	groupstore "github.com/imagenix/mediateca/internal/app/store/groups"
	tagstore "github.com/imagenix/mediateca/internal/app/store/tags"
	"github.com/imagenix/mediateca/internal/app/system/storage"
)

// Handler is the shared dependency container for the files feature.
type Handler struct {
	Files   *filestore.Store
	Folders *folderstore.Store
	Groups  *groupstore.Store
	Tags    *tagstore.Store
	Objects storage.Provider
	Log     *zap.Logger
}

func NewHandler(files *filestore.Store, folders *folderstore.Store, groups *groupstore.Store, tags *tagstore.Store, objects storage.Provider, log *zap.Logger) *Handler {
	return &Handler{
		Files:   files,
		Folders: folders,
		Groups:  groups,
		Tags:    tags,
		Objects: objects,
		Log:     log,
	}
}
