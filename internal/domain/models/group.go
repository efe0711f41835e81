// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a named collection of users. Names are unique across the library.
//
// Members mirrors User.Groups (see User). A group cannot be deleted while
// Members is non-empty; deletion also unassigns the group from every folder
// and file that references it.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// GroupSummary is the list-view projection of a group: the member set is
// collapsed to a count and the creator is joined in for display.
type GroupSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	MemberCount int                `bson:"member_count" json:"member_count"`
	CreatedBy   UserRef            `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserRef is the display projection of a referenced user.
type UserRef struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email,omitempty" json:"email,omitempty"`
}

// GroupRef is the display projection of a referenced group.
type GroupRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}
