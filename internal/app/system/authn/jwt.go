// internal/app/system/authn/jwt.go

// Package authn issues and verifies the bearer tokens that front every
// API route, and resolves tokens into the actor the handlers see.
package authn

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/domain/models"
)

// Claims is the token payload. Role is informational only; authorization
// always runs against the user record looked up per request.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Signer mints and verifies HS256 tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token for the user.
func (s *Signer) Sign(u *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID.Hex(),
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", apierr.Internal(fmt.Errorf("sign token: %w", err))
	}
	return signed, nil
}

// Parse verifies the signature and expiry and returns the user ID the
// token was issued for.
func (s *Signer) Parse(token string) (primitive.ObjectID, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return primitive.NilObjectID, apierr.Authentication("invalid or expired token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, apierr.Authentication("invalid or expired token")
	}
	return id, nil
}
