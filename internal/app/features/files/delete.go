// internal/app/features/files/delete.go

package files

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/storage"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
)

// HandleDelete removes a file record and releases its stored object.
// Deleting an absent file succeeds; a failed object release is logged but
// does not undo the metadata delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	f, err := h.Files.FindByID(ctx, id)
	if err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			httpjson.NoContent(w)
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := canMutate(actor, f); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	deleted, err := h.Files.Delete(ctx, id)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if deleted != nil && deleted.StorageID != "" {
		if err := h.Objects.Delete(ctx, deleted.StorageID); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			h.Log.Warn("stored object not released",
				zap.String("object_id", deleted.StorageID), zap.Error(err))
		}
	}
	httpjson.NoContent(w)
}
