// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles recognized by the service. RoleUsuario is the registration default
// and carries no listing visibility until an admin promotes the account.
const (
	RoleAdmin     = "admin"
	RoleDocente   = "docente"
	RoleResidente = "residente"
	RoleUsuario   = "usuario"
)

// ValidRole reports whether role is one of the canonical role values.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDocente, RoleResidente, RoleUsuario:
		return true
	}
	return false
}

// User represents an account in the library.
//
// NOTE:
//   - Groups mirrors Group.Members: every group id held here must appear in
//     that group's members set, and vice versa. Only the group store mutates
//     either side, always as a paired update.
//   - PasswordHash and the token hashes are never serialized to JSON.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"` // stored lowercase
	PasswordHash string               `bson:"password" json:"-"`
	Role         string               `bson:"role" json:"role"`
	Groups       []primitive.ObjectID `bson:"groups" json:"groups"`

	IsEmailVerified bool `bson:"is_email_verified" json:"is_email_verified"`

	// sha256 hex digests of the outstanding tokens; the raw token only ever
	// travels in the email link.
	EmailVerifyTokenHash string     `bson:"email_verify_token,omitempty" json:"-"`
	EmailVerifyExpires   *time.Time `bson:"email_verify_expires,omitempty" json:"-"`
	PasswordResetHash    string     `bson:"password_reset_token,omitempty" json:"-"`
	PasswordResetExpires *time.Time `bson:"password_reset_expires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
