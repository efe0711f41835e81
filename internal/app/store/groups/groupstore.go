// internal/app/store/groups/groupstore.go

// Package groupstore persists groups and is the only writer of the
// two-sided membership relation (Group.Members and User.Groups).
package groupstore

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

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/domain/models"
)

type Store struct {
	c       *mongo.Collection
	users   *mongo.Collection
	folders *mongo.Collection
	files   *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("groups"),
		users:   db.Collection("users"),
		folders: db.Collection("folders"),
		files:   db.Collection("files"),
	}
}

// Create inserts a group with an empty member set.
func (s *Store) Create(ctx context.Context, g *models.Group) error {
	g.ID = primitive.NewObjectID()
	g.Name = strings.TrimSpace(g.Name)
	g.Members = []primitive.ObjectID{}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return apierr.Conflict("a group named %q already exists", g.Name)
		}
		return apierr.Internal(fmt.Errorf("insert group: %w", err))
	}
	return nil
}

// FindByID loads a group.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierr.NotFound("group not found")
		}
		return nil, apierr.Internal(fmt.Errorf("find group: %w", err))
	}
	return &g, nil
}

// List returns every group as a summary: member sets collapsed to counts
// and the creator joined in for display.
func (s *Store) List(ctx context.Context) ([]models.GroupSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "created_by",
			"foreignField": "_id",
			"as":           "creator",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$creator", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"name":         1,
			"description":  1,
			"member_count": bson.M{"$size": "$members"},
			"created_at":   1,
			"updated_at":   1,
			"created_by": bson.M{
				"_id":      "$creator._id",
				"username": "$creator.username",
				"email":    "$creator.email",
			},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list groups: %w", err))
	}
	out := []models.GroupSummary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apierr.Internal(fmt.Errorf("decode groups: %w", err))
	}
	return out, nil
}

// Update renames a group or changes its description.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return apierr.Conflict("a group with that name already exists")
		}
		return apierr.Internal(fmt.Errorf("update group: %w", err))
	}
	if res.MatchedCount == 0 {
		return apierr.NotFound("group not found")
	}
	return nil
}

// Delete removes an empty group and clears its assignment from every
// folder and file that referenced it. A non-empty group is a conflict.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	g, err := s.FindByID(ctx, id)
	if err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			return nil
		}
		return err
	}
	if len(g.Members) > 0 {
		return apierr.Conflict("group still has %d member(s)", len(g.Members))
	}

	unassign := bson.M{"$set": bson.M{"assigned_group": nil, "updated_at": time.Now().UTC()}}
	if _, err := s.folders.UpdateMany(ctx, bson.M{"assigned_group": id}, unassign); err != nil {
		return apierr.Internal(fmt.Errorf("unassign group from folders: %w", err))
	}
	if _, err := s.files.UpdateMany(ctx, bson.M{"assigned_group": id}, unassign); err != nil {
		return apierr.Internal(fmt.Errorf("unassign group from files: %w", err))
	}

	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return apierr.Internal(fmt.Errorf("delete group: %w", err))
	}
	return nil
}

// AddMember adds the user to the group and mirrors the membership on the
// user document. The group side is written first so a crash between the
// two writes leaves the user under-privileged rather than over-privileged.
func (s *Store) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	now := time.Now().UTC()

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": groupID},
		bson.M{"$addToSet": bson.M{"members": userID}, "$set": bson.M{"updated_at": now}})
	if err != nil {
		return apierr.Internal(fmt.Errorf("add group member: %w", err))
	}
	if res.MatchedCount == 0 {
		return apierr.NotFound("group not found")
	}

	ures, err := s.users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"groups": groupID}, "$set": bson.M{"updated_at": now}})
	if err != nil {
		return apierr.Internal(fmt.Errorf("mirror membership on user: %w", err))
	}
	if ures.MatchedCount == 0 {
		// Roll the group side back so the mirror stays consistent.
		_, _ = s.c.UpdateOne(ctx, bson.M{"_id": groupID},
			bson.M{"$pull": bson.M{"members": userID}})
		return apierr.NotFound("user not found")
	}
	return nil
}

// RemoveMember removes the user from the group on both sides. Removing a
// non-member is not an error.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	now := time.Now().UTC()

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": groupID},
		bson.M{"$pull": bson.M{"members": userID}, "$set": bson.M{"updated_at": now}})
	if err != nil {
		return apierr.Internal(fmt.Errorf("remove group member: %w", err))
	}
	if res.MatchedCount == 0 {
		return apierr.NotFound("group not found")
	}

	if _, err := s.users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"groups": groupID}, "$set": bson.M{"updated_at": now}}); err != nil {
		return apierr.Internal(fmt.Errorf("mirror removal on user: %w", err))
	}
	return nil
}

// RemoveUserEverywhere strips a user from every group's member set. Used
// when an account is deleted.
func (s *Store) RemoveUserEverywhere(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx, bson.M{"members": userID},
		bson.M{"$pull": bson.M{"members": userID}, "$set": bson.M{"updated_at": time.Now().UTC()}})
	if err != nil {
		return apierr.Internal(fmt.Errorf("remove user from groups: %w", err))
	}
	return nil
}
