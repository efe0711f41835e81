// internal/app/store/tags/tagstore_test.go

package tagstore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/imagenix/mediateca/internal/app/system/apierr"
	"github.com/imagenix/mediateca/internal/app/system/indexes"
	"github.com/imagenix/mediateca/internal/domain/models"
	"github.com/imagenix/mediateca/internal/testutil"
)

func TestFindOrCreateNormalizesAndConverges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)
	fx := testutil.Fixtures{DB: db}
	admin := fx.User(t, models.RoleAdmin)

	first, err := s.FindOrCreate(ctx, "  Cardio  ", admin.ID)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if first.Name != "cardio" {
		t.Errorf("name = %q, want cardio", first.Name)
	}

	second, err := s.FindOrCreate(ctx, "CARDIO", admin.ID)
	if err != nil {
		t.Fatalf("second FindOrCreate: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("same name produced two tags")
	}
}

func TestFindOrCreateRejectsBlank(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)

	if _, err := s.FindOrCreate(ctx, "   ", primitive.NewObjectID()); !apierr.Is(err, apierr.KindValidation) {
		t.Errorf("blank name: got %v, want validation error", err)
	}
}

func TestEnsureAllSkipsBlanksAndDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)
	fx := testutil.Fixtures{DB: db}
	admin := fx.User(t, models.RoleAdmin)

	ids, err := s.EnsureAll(ctx, []string{"eco", "", "ECO", "  ", "doppler"}, admin.ID)
	if err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("EnsureAll returned %d ids, want 2", len(ids))
	}
}

func TestRenameConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll indexes: %v", err)
	}
	s := New(db)
	fx := testutil.Fixtures{DB: db}
	admin := fx.User(t, models.RoleAdmin)

	a := fx.Tag(t, "alfa", admin.ID)
	fx.Tag(t, "beta", admin.ID)

	if err := s.Rename(ctx, a.ID, "Beta"); !apierr.Is(err, apierr.KindConflict) {
		t.Errorf("rename onto existing name: got %v, want conflict", err)
	}
}

func TestDeleteDetachesFromFiles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.Ctx(t)
	s := New(db)
	fx := testutil.Fixtures{DB: db}
	admin := fx.User(t, models.RoleAdmin)

	tag := fx.Tag(t, "obsoleto", admin.ID)
	folder := fx.Folder(t, admin.ID, nil, nil)
	file := fx.File(t, admin.ID, folder.ID, func(f *models.File) {
		f.Tags = []primitive.ObjectID{tag.ID}
	})

	if err := s.Delete(ctx, tag.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var reloaded models.File
	if err := db.Collection("files").FindOne(ctx, bson.M{"_id": file.ID}).Decode(&reloaded); err != nil {
		t.Fatalf("reload file: %v", err)
	}
	if len(reloaded.Tags) != 0 {
		t.Errorf("tag not detached from file: %v", reloaded.Tags)
	}

	if err := s.Delete(ctx, tag.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}
