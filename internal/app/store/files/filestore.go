// internal/app/store/files/filestore.go

// Package filestore persists file metadata records. Callers compose the
// visibility and criteria filters; the store only runs them.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("files")}
}

// Create inserts a file record.
func (s *Store) Create(ctx context.Context, f *models.File) error {
	f.ID = primitive.NewObjectID()
	if f.Tags == nil {
		f.Tags = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return apierr.Internal(fmt.Errorf("insert file: %w", err))
	}
	return nil
}

// FindByID loads a file record.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	var f models.File
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierr.NotFound("file not found")
		}
		return nil, apierr.Internal(fmt.Errorf("find file: %w", err))
	}
	return &f, nil
}

// List runs the composed filter and returns display-ready views with the
// uploader, tags and assigned group joined in.
func (s *Store) List(ctx context.Context, filter bson.M, sort bson.D) ([]models.FileView, error) {
	if filter == nil {
		filter = bson.M{}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "uploaded_by",
			"foreignField": "_id",
			"as":           "uploader_docs",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "tags",
			"localField":   "tags",
			"foreignField": "_id",
			"as":           "tag_refs",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "groups",
			"localField":   "assigned_group",
			"foreignField": "_id",
			"as":           "group_docs",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"uploader":  bson.M{"$arrayElemAt": bson.A{"$uploader_docs", 0}},
			"group_ref": bson.M{"$arrayElemAt": bson.A{"$group_docs", 0}},
		}}},
		{{Key: "$project", Value: bson.M{"uploader_docs": 0, "group_docs": 0}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list files: %w", err))
	}
	views := []models.FileView{}
	if err := cur.All(ctx, &views); err != nil {
		return nil, apierr.Internal(fmt.Errorf("decode files: %w", err))
	}
	return views, nil
}

// Update applies the given set document and returns the updated record.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.File, error) {
	set["updated_at"] = time.Now().UTC()
	var f models.File
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierr.NotFound("file not found")
		}
		return nil, apierr.Internal(fmt.Errorf("update file: %w", err))
	}
	return &f, nil
}

// Delete removes a file record, returning it so the caller can release
// the backing object. Absent records return (nil, nil) so deletes stay
// idempotent.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	var f models.File
	err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&f)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apierr.Internal(fmt.Errorf("delete file: %w", err))
	}
	return &f, nil
}
