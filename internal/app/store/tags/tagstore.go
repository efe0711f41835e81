// internal/app/store/tags/tagstore.go

// Package tagstore persists tags. Names are normalized to lowercase and
// find-or-create is a single atomic upsert so concurrent uploads naming
// the same new tag converge on one document.
package tagstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/domain/models"
)

type Store struct {
	c     *mongo.Collection
	files *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tags"), files: db.Collection("files")}
}

// Normalize canonicalizes a tag name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindOrCreate returns the tag with the given name, creating it when
// absent. The upsert only sets fields on insert, so racing callers all
// receive the same document.
func (s *Store) FindOrCreate(ctx context.Context, name string, createdBy primitive.ObjectID) (*models.Tag, error) {
	name = Normalize(name)
	if name == "" {
		return nil, apierr.Validation("tag name is required")
	}

	now := time.Now().UTC()
	update := bson.M{"$setOnInsert": bson.M{
		"name":       name,
		"created_by": createdBy,
		"created_at": now,
		"updated_at": now,
	}}

	var tag models.Tag
	err := s.c.FindOneAndUpdate(ctx, bson.M{"name": name}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)).Decode(&tag)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("find or create tag %q: %w", name, err))
	}
	return &tag, nil
}

// EnsureAll resolves a list of names to tag IDs, creating missing tags.
// Blank names are skipped; duplicates collapse to one ID.
func (s *Store) EnsureAll(ctx context.Context, names []string, createdBy primitive.ObjectID) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{}
	seen := map[string]bool{}
	for _, raw := range names {
		name := Normalize(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tag, err := s.FindOrCreate(ctx, name, createdBy)
		if err != nil {
			return nil, err
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// FindByID loads a tag.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&tag); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierr.NotFound("tag not found")
		}
		return nil, apierr.Internal(fmt.Errorf("find tag: %w", err))
	}
	return &tag, nil
}

// List returns every tag sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Tag, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list tags: %w", err))
	}
	tags := []models.Tag{}
	if err := cur.All(ctx, &tags); err != nil {
		return nil, apierr.Internal(fmt.Errorf("decode tags: %w", err))
	}
	return tags, nil
}

// Rename changes a tag's name, keeping the lowercase invariant.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	name = Normalize(name)
	if name == "" {
		return apierr.Validation("tag name is required")
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return apierr.Conflict("a tag named %q already exists", name)
		}
		return apierr.Internal(fmt.Errorf("rename tag: %w", err))
	}
	if res.MatchedCount == 0 {
		return apierr.NotFound("tag not found")
	}
	return nil
}

// Delete removes a tag and detaches it from every file that carried it.
// Deleting an absent tag is a no-op.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.files.UpdateMany(ctx, bson.M{"tags": id},
		bson.M{"$pull": bson.M{"tags": id}, "$set": bson.M{"updated_at": time.Now().UTC()}}); err != nil {
		return apierr.Internal(fmt.Errorf("detach tag from files: %w", err))
	}
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return apierr.Internal(fmt.Errorf("delete tag: %w", err))
	}
	return nil
}
