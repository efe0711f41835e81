// internal/domain/models/folder.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder is a node in a strict tree. ParentFolder nil means root level.
//
// The (parent_folder, name) pair is unique; the folders collection carries a
// compound unique index so concurrent creates of the same sibling name fail
// at the storage layer. A folder with child folders or contained files
// cannot be deleted.
//
// AssignedGroup nil means "visible per role default"; non-nil restricts
// visibility to members of that group.
type Folder struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name          string              `bson:"name" json:"name"`
	ParentFolder  *primitive.ObjectID `bson:"parent_folder" json:"parent_folder"`
	CreatedBy     primitive.ObjectID  `bson:"created_by" json:"created_by"`
	AssignedGroup *primitive.ObjectID `bson:"assigned_group" json:"assigned_group"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
