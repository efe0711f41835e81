// internal/app/features/files/list.go

package files

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/httpjson"
	"github.com/imagenix/mediateca/internal/app/system/timeouts"
	"github.com/imagenix/mediateca/internal/app/system/visibility"
)

// HandleList returns the files of one folder visible to the caller,
// narrowed by the optional query criteria and joined with uploader,
// tags and group.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.MustActor(r.Context())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	perm, err := visibility.Permission(actor, visibility.OwnerUploadedBy)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	q := r.URL.Query()

	raw := q.Get("folder")
	if raw == "" {
		httpjson.Fail(w, h.Log, apierr.Validation("a folder id is required"))
		return
	}
	folderID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		httpjson.Fail(w, h.Log, apierr.Validation("invalid folder id"))
		return
	}
	base := bson.M{"folder": folderID}

	criteria := visibility.Criteria{
		FileType:  q.Get("type"),
		Tags:      q.Get("tags"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortDir:   q.Get("sort_dir"),
	}

	ctx, cancel := timeouts.Context(r.Context(), timeouts.Medium)
	defer cancel()

	views, err := h.Files.List(ctx, visibility.And(base, perm, criteria.Predicate()), criteria.Sort())
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, views)
}
