// internal/app/system/indexes/indexes.go

// Package indexes declares every MongoDB index the service relies on and
// ensures them at startup. Uniqueness constraints live here; the stores
// assume they exist.
package indexes

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type spec struct {
	collection string
	models     []mongo.IndexModel
}

var all = []spec{
	{
		collection: "users",
		models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	},
	{
		collection: "groups",
		models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "members", Value: 1}}},
		},
	},
	{
		collection: "folders",
		models: []mongo.IndexModel{
			// Sibling names are unique under a shared parent, including
			// the root (parent_folder null).
			{Keys: bson.D{{Key: "parent_folder", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "assigned_group", Value: 1}}},
		},
	},
	{
		collection: "tags",
		models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	},
	{
		collection: "files",
		models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "folder", Value: 1}}},
			{Keys: bson.D{{Key: "uploaded_by", Value: 1}}},
			{Keys: bson.D{{Key: "assigned_group", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	},
}

// EnsureAll creates every declared index, collecting per-collection
// failures instead of stopping at the first.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []error
	for _, s := range all {
		if _, err := db.Collection(s.collection).Indexes().CreateMany(ctx, s.models); err != nil {
			problems = append(problems, fmt.Errorf("ensure %s indexes: %w", s.collection, err))
		}
	}
	return errors.Join(problems...)
}
