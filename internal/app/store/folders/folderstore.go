// internal/app/store/folders/folderstore.go

// Package folderstore persists the folder tree. Sibling-name uniqueness is
// enforced by the compound unique index on (parent_folder, name).
package folderstore

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
	return &Store{c: db.Collection("folders"), files: db.Collection("files")}
}

// Create inserts a folder. A duplicate sibling name surfaces as a conflict
// whether it is caught by the preflight read or by the unique index under
// a concurrent race.
func (s *Store) Create(ctx context.Context, f *models.Folder) error {
	f.ID = primitive.NewObjectID()
	f.Name = strings.TrimSpace(f.Name)
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	err := s.c.FindOne(ctx, bson.M{"parent_folder": f.ParentFolder, "name": f.Name}).Err()
	if err == nil {
		return apierr.Conflict("a folder named %q already exists here", f.Name)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return apierr.Internal(fmt.Errorf("check sibling name: %w", err))
	}

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return apierr.Conflict("a folder named %q already exists here", f.Name)
		}
		return apierr.Internal(fmt.Errorf("insert folder: %w", err))
	}
	return nil
}

// FindByID loads a folder.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var f models.Folder
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierr.NotFound("folder not found")
		}
		return nil, apierr.Internal(fmt.Errorf("find folder: %w", err))
	}
	return &f, nil
}

// List returns the folders matching the given visibility filter, sorted
// by name.
func (s *Store) List(ctx context.Context, filter bson.M) ([]models.Folder, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list folders: %w", err))
	}
	out := []models.Folder{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apierr.Internal(fmt.Errorf("decode folders: %w", err))
	}
	return out, nil
}

// ListChildren returns the folders directly under parent (nil for the
// roots) that also match the visibility filter.
func (s *Store) ListChildren(ctx context.Context, parent *primitive.ObjectID, visibility bson.M) ([]models.Folder, error) {
	filter := bson.M{"parent_folder": parent}
	for k, v := range visibility {
		filter[k] = v
	}
	return s.List(ctx, filter)
}

// Update applies the given set document. Renames that collide with a
// sibling surface as conflicts via the unique index.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return apierr.Conflict("a folder with that name already exists here")
		}
		return apierr.Internal(fmt.Errorf("update folder: %w", err))
	}
	if res.MatchedCount == 0 {
		return apierr.NotFound("folder not found")
	}
	return nil
}

// Delete removes an empty folder. Folders holding child folders or files
// cannot be deleted; deleting an absent folder is a no-op.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	children, err := s.c.CountDocuments(ctx, bson.M{"parent_folder": id})
	if err != nil {
		return apierr.Internal(fmt.Errorf("count child folders: %w", err))
	}
	if children > 0 {
		return apierr.Conflict("folder contains subfolders")
	}

	contained, err := s.files.CountDocuments(ctx, bson.M{"folder": id})
	if err != nil {
		return apierr.Internal(fmt.Errorf("count contained files: %w", err))
	}
	if contained > 0 {
		return apierr.Conflict("folder contains files")
	}

	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return apierr.Internal(fmt.Errorf("delete folder: %w", err))
	}
	return nil
}
