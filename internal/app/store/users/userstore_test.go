// internal/app/store/users/userstore_test.go

package userstore

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/indexes"
	"github.com/imagenix/mediateca/internal/domain/models"
	"github.com/imagenix/mediateca/internal/testutil"
)

func TestCreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)

	u := &models.User{Username: "ana", Email: "Ana@Example.COM", PasswordHash: "x"}
	if err := s.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Errorf("email not lowercased: %q", u.Email)
	}
	if u.Role != models.RoleUsuario {
		t.Errorf("default role = %q, want usuario", u.Role)
	}

	got, err := s.FindByEmail(ctx, "ANA@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("FindByEmail returned wrong user")
	}

	byID, err := s.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID.Username != "ana" {
		t.Errorf("FindByID username = %q", byID.Username)
	}
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	s := New(db)

	if err := s.Create(ctx, &models.User{Username: "a", Email: "dup@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	err := s.Create(ctx, &models.User{Username: "b", Email: "dup@example.com", PasswordHash: "x"})
	if !apierr.Is(err, apierr.KindConflict) {
		t.Errorf("duplicate email: got %v, want conflict", err)
	}
}

func TestFindMissingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)

	if _, err := s.FindByEmail(ctx, "nobody@example.com"); !apierr.Is(err, apierr.KindNotFound) {
		t.Errorf("missing user: got %v, want not found", err)
	}
}

func TestVerifyEmailByTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)
	fx := testutil.Fixtures{DB: db}

	u := fx.User(t, models.RoleUsuario)
	if err := s.Update(ctx, u.ID, bson.M{"is_email_verified": false}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := s.SetEmailVerifyToken(ctx, u.ID, "hash-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetEmailVerifyToken: %v", err)
	}

	verified, err := s.VerifyEmailByTokenHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("VerifyEmailByTokenHash: %v", err)
	}
	if !verified.IsEmailVerified {
		t.Error("user not marked verified")
	}
	if verified.EmailVerifyTokenHash != "" {
		t.Error("token hash not cleared")
	}

	// A consumed token no longer matches.
	if _, err := s.VerifyEmailByTokenHash(ctx, "hash-1"); !apierr.Is(err, apierr.KindValidation) {
		t.Errorf("reused token: got %v, want validation error", err)
	}
}

func TestVerifyEmailRejectsExpiredToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)
	fx := testutil.Fixtures{DB: db}

	u := fx.User(t, models.RoleUsuario)
	if err := s.SetEmailVerifyToken(ctx, u.ID, "hash-old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("SetEmailVerifyToken: %v", err)
	}
	if _, err := s.VerifyEmailByTokenHash(ctx, "hash-old"); !apierr.Is(err, apierr.KindValidation) {
		t.Errorf("expired token: got %v, want validation error", err)
	}
}

func TestResetPasswordByTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)
	fx := testutil.Fixtures{DB: db}

	u := fx.User(t, models.RoleResidente)
	if err := s.SetPasswordResetToken(ctx, u.ID, "reset-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetPasswordResetToken: %v", err)
	}

	after, err := s.ResetPasswordByTokenHash(ctx, "reset-1", "new-hash")
	if err != nil {
		t.Fatalf("ResetPasswordByTokenHash: %v", err)
	}
	if after.PasswordHash != "new-hash" {
		t.Errorf("password hash = %q, want new-hash", after.PasswordHash)
	}
	if after.PasswordResetHash != "" {
		t.Error("reset hash not cleared")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)
	fx := testutil.Fixtures{DB: db}

	u := fx.User(t, models.RoleResidente)
	if err := s.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, u.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}
