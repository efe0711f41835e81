// internal/testutil/fixtures.go

package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/imagenix/mediateca/internal/domain/models"
)

var fixtureSeq atomic.Int64

func nextSeq() int64 { return fixtureSeq.Add(1) }

// Fixtures inserts prebuilt documents for tests.
type Fixtures struct {
	DB *mongo.Database
}

func (f Fixtures) insert(t *testing.T, collection string, doc any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := f.DB.Collection(collection).InsertOne(ctx, doc); err != nil {
		t.Fatalf("insert %s fixture: %v", collection, err)
	}
}

// User inserts a verified user with the given role and group memberships.
func (f Fixtures) User(t *testing.T, role string, groups ...primitive.ObjectID) *models.User {
	t.Helper()
	n := nextSeq()
	now := time.Now().UTC()
	u := &models.User{
		ID:              primitive.NewObjectID(),
		Username:        fmt.Sprintf("user%d", n),
		Email:           fmt.Sprintf("user%d@example.com", n),
		PasswordHash:    "$2a$10$fixturefixturefixturefixturefixtu",
		Role:            role,
		Groups:          append([]primitive.ObjectID{}, groups...),
		IsEmailVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.insert(t, "users", u)
	return u
}

// Group inserts a group created by the given user.
func (f Fixtures) Group(t *testing.T, createdBy primitive.ObjectID, members ...primitive.ObjectID) *models.Group {
	t.Helper()
	now := time.Now().UTC()
	g := &models.Group{
		ID:        primitive.NewObjectID(),
		Name:      fmt.Sprintf("group%d", nextSeq()),
		Members:   append([]primitive.ObjectID{}, members...),
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(t, "groups", g)
	return g
}

// Folder inserts a folder. parent and group may be nil.
func (f Fixtures) Folder(t *testing.T, createdBy primitive.ObjectID, parent, group *primitive.ObjectID) *models.Folder {
	t.Helper()
	now := time.Now().UTC()
	fold := &models.Folder{
		ID:            primitive.NewObjectID(),
		Name:          fmt.Sprintf("folder%d", nextSeq()),
		ParentFolder:  parent,
		CreatedBy:     createdBy,
		AssignedGroup: group,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(t, "folders", fold)
	return fold
}

// Tag inserts a tag.
func (f Fixtures) Tag(t *testing.T, name string, createdBy primitive.ObjectID) *models.Tag {
	t.Helper()
	now := time.Now().UTC()
	tag := &models.Tag{
		ID:        primitive.NewObjectID(),
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(t, "tags", tag)
	return tag
}

// File inserts a file record in the given folder. mutate, when non-nil,
// adjusts the document before insertion.
func (f Fixtures) File(t *testing.T, uploadedBy, folder primitive.ObjectID, mutate func(*models.File)) *models.File {
	t.Helper()
	n := nextSeq()
	now := time.Now().UTC()
	file := &models.File{
		ID:         primitive.NewObjectID(),
		Filename:   fmt.Sprintf("file%d.pdf", n),
		FileType:   models.FileTypePDF,
		StorageID:  fmt.Sprintf("obj-%d", n),
		SecureURL:  fmt.Sprintf("https://files.example.com/obj-%d", n),
		Size:       1024,
		Folder:     folder,
		Tags:       []primitive.ObjectID{},
		UploadedBy: uploadedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if mutate != nil {
		mutate(file)
	}
	f.insert(t, "files", file)
	return file
}
