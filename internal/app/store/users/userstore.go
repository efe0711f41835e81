// internal/app/store/users/userstore.go

// Package userstore persists accounts and their verification and
// password-reset token state.
package userstore

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
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new account. Email is lowercased; role defaults to
// usuario. Duplicate username or email comes back as a conflict.
func (s *Store) Create(ctx context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.TrimSpace(u.Username)
	if u.Role == "" {
		u.Role = models.RoleUsuario
	}
	if u.Groups == nil {
		u.Groups = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return apierr.Conflict("username or email already in use")
		}
		return apierr.Internal(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

// FindByID loads an account.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierr.NotFound("user not found")
		}
		return nil, apierr.Internal(fmt.Errorf("find user: %w", err))
	}
	return &u, nil
}

// FindByEmail looks up an account by lowercased email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierr.NotFound("user not found")
		}
		return nil, apierr.Internal(fmt.Errorf("find user by email: %w", err))
	}
	return &u, nil
}

// List returns every account, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list users: %w", err))
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, apierr.Internal(fmt.Errorf("decode users: %w", err))
	}
	return users, nil
}

// Update applies the given set document plus a fresh updated_at.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return apierr.Conflict("username or email already in use")
		}
		return apierr.Internal(fmt.Errorf("update user: %w", err))
	}
	if res.MatchedCount == 0 {
		return apierr.NotFound("user not found")
	}
	return nil
}

// SetEmailVerifyToken stores the hash and expiry of a fresh verification
// token, replacing any outstanding one.
func (s *Store) SetEmailVerifyToken(ctx context.Context, id primitive.ObjectID, hash string, expires time.Time) error {
	return s.Update(ctx, id, bson.M{
		"email_verify_token":   hash,
		"email_verify_expires": expires,
	})
}

// VerifyEmailByTokenHash marks the matching, unexpired account verified and
// clears the token. An unknown or expired hash is a validation error so the
// response does not reveal whether the token ever existed.
func (s *Store) VerifyEmailByTokenHash(ctx context.Context, hash string) (*models.User, error) {
	filter := bson.M{
		"email_verify_token":   hash,
		"email_verify_expires": bson.M{"$gt": time.Now().UTC()},
	}
	update := bson.M{
		"$set": bson.M{"is_email_verified": true, "updated_at": time.Now().UTC()},
		"$unset": bson.M{
			"email_verify_token":   "",
			"email_verify_expires": "",
		},
	}
	var u models.User
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierr.Validation("invalid or expired verification token")
		}
		return nil, apierr.Internal(fmt.Errorf("verify email: %w", err))
	}
	return &u, nil
}

// SetPasswordResetToken stores the hash and expiry of a reset token.
func (s *Store) SetPasswordResetToken(ctx context.Context, id primitive.ObjectID, hash string, expires time.Time) error {
	return s.Update(ctx, id, bson.M{
		"password_reset_token":   hash,
		"password_reset_expires": expires,
	})
}

// ResetPasswordByTokenHash sets a new password hash on the matching,
// unexpired account and clears the reset token.
func (s *Store) ResetPasswordByTokenHash(ctx context.Context, hash, passwordHash string) (*models.User, error) {
	filter := bson.M{
		"password_reset_token":   hash,
		"password_reset_expires": bson.M{"$gt": time.Now().UTC()},
	}
	update := bson.M{
		"$set": bson.M{"password": passwordHash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{
			"password_reset_token":   "",
			"password_reset_expires": "",
		},
	}
	var u models.User
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apierr.Validation("invalid or expired reset token")
		}
		return nil, apierr.Internal(fmt.Errorf("reset password: %w", err))
	}
	return &u, nil
}

// Delete removes an account. Deleting an absent account is not an error.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return apierr.Internal(fmt.Errorf("delete user: %w", err))
	}
	return nil
}
