// internal/app/system/visibility/visibility.go

// Package visibility builds the role-aware Mongo predicates that restrict
// folder and file listings. Everything here is a pure function over already
// resolved identity data; no database access, no side effects.
package visibility

import (
	"regexp"
	"strings"
	"time"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated identity an operation runs on behalf of.
type Actor struct {
	ID       primitive.ObjectID
	Role     string
	GroupIDs []primitive.ObjectID
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// Ownership field names, the one axis on which the folder and file
// predicates differ.
const (
	OwnerCreatedBy  = "created_by"
	OwnerUploadedBy = "uploaded_by"
)

// Permission returns the role predicate for the actor, keyed on ownerField.
//
//   - admin: empty predicate (unrestricted)
//   - residente: assigned_group is null OR one of the actor's groups
//   - docente: owned by the actor OR assigned to one of the actor's groups
//   - anything else: AuthorizationError
//
// The empty admin predicate composes to the bare base scope in And.
func Permission(actor Actor, ownerField string) (bson.M, error) {
	groupIDs := actor.GroupIDs
	if groupIDs == nil {
		groupIDs = []primitive.ObjectID{}
	}
	switch actor.Role {
	case models.RoleAdmin:
		return bson.M{}, nil
	case models.RoleResidente:
		return bson.M{"$or": bson.A{
			bson.M{"assigned_group": nil},
			bson.M{"assigned_group": bson.M{"$in": groupIDs}},
		}}, nil
	case models.RoleDocente:
		return bson.M{"$or": bson.A{
			bson.M{ownerField: actor.ID},
			bson.M{"assigned_group": bson.M{"$in": groupIDs}},
		}}, nil
	default:
		return nil, apierr.Authorization("role not permitted to list")
	}
}

// And combines the base scope with zero or more extra predicates. Empty
// predicates are dropped; a single surviving predicate is returned as-is so
// the common admin path produces no needless $and wrapper.
func And(base bson.M, extra ...bson.M) bson.M {
	parts := make(bson.A, 0, 1+len(extra))
	if len(base) > 0 {
		parts = append(parts, base)
	}
	for _, e := range extra {
		if len(e) > 0 {
			parts = append(parts, e)
		}
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	default:
		return bson.M{"$and": parts}
	}
}

// Criteria are the orthogonal user-supplied listing filters. All fields are
// raw request strings; invalid values are dropped silently and defaults
// substituted, never turned into errors.
type Criteria struct {
	FileType  string // one of the file type enum values
	Tags      string // comma-separated tag ObjectID hex strings, ALL must match
	StartDate string // YYYY-MM-DD, inclusive from 00:00:00.000 UTC
	EndDate   string // YYYY-MM-DD, inclusive until 23:59:59.999 UTC
	Search    string // case-insensitive substring over filename/description
	SortBy    string // created_at | filename | size
	SortDir   string // asc | desc
}

// Predicate renders the criteria into a single bson.M suitable for And.
// Criteria never widen the permission filter; they only narrow it.
func (c Criteria) Predicate() bson.M {
	out := bson.M{}

	if c.FileType != "" && models.ValidFileType(c.FileType) {
		out["file_type"] = c.FileType
	}

	if ids := parseObjectIDs(c.Tags); len(ids) > 0 {
		out["tags"] = bson.M{"$all": ids}
	}

	if dr := dateRange(c.StartDate, c.EndDate); len(dr) > 0 {
		out["created_at"] = dr
	}

	if q := strings.TrimSpace(c.Search); q != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		out["$or"] = bson.A{
			bson.M{"filename": re},
			bson.M{"description": re},
		}
	}

	return out
}

// Sort returns the sort document for the criteria. Unknown sort fields fall
// back to newest-first, matching the default listing order.
func (c Criteria) Sort() bson.D {
	field, ok := sortFields[c.SortBy]
	if !ok {
		return bson.D{{Key: "created_at", Value: -1}}
	}
	dir := -1
	if strings.EqualFold(c.SortDir, "asc") {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

var sortFields = map[string]string{
	"created_at": "created_at",
	"filename":   "filename",
	"size":       "size",
}

// parseObjectIDs splits a comma-separated hex list, keeping only well-formed
// ObjectIDs. Malformed entries are dropped, not errors.
func parseObjectIDs(csv string) []primitive.ObjectID {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	var ids []primitive.ObjectID
	for _, part := range strings.Split(csv, ",") {
		if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func dateRange(start, end string) bson.M {
	out := bson.M{}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(start)); err == nil {
		out["$gte"] = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(end)); err == nil {
		out["$lte"] = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.UTC)
	}
	return out
}
