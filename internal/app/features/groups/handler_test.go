// internal/app/features/groups/handler_test.go

package groups_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/imagenix/mediateca/internal/app/features/groups"
	groupstore "github.com/imagenix/mediateca/internal/app/store/groups"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/visibility"
	"github.com/imagenix/mediateca/internal/domain/models"
	"github.com/imagenix/mediateca/internal/testutil"
)

// asActor replaces the bearer-token middleware with a fixed actor.
func asActor(a visibility.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authz.WithActor(r.Context(), a)))
		})
	}
}

func actorFor(u *models.User) visibility.Actor {
	return visibility.Actor{ID: u.ID, Role: u.Role, GroupIDs: u.Groups}
}

func newRouter(db *mongo.Database, a visibility.Actor) http.Handler {
	h := groups.NewHandler(groupstore.New(db), zap.NewNop())
	return groups.Routes(h, asActor(a))
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateRequiresAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := &testutil.Fixtures{DB: db}

	admin := fx.User(t, models.RoleAdmin)
	docente := fx.User(t, models.RoleDocente)

	rec := doJSON(t, newRouter(db, actorFor(docente)), http.MethodPost, "/", map[string]any{"name": "Cardiología"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("docente create: status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, newRouter(db, actorFor(admin)), http.MethodPost, "/", map[string]any{"name": "Cardiología"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, newRouter(db, actorFor(admin)), http.MethodPost, "/", map[string]any{"name": "Cardiología"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create: status = %d, want 409", rec.Code)
	}
}

func TestMembershipOverHTTP(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := &testutil.Fixtures{DB: db}

	admin := fx.User(t, models.RoleAdmin)
	member := fx.User(t, models.RoleResidente)
	group := fx.Group(t, admin.ID)

	router := newRouter(db, actorFor(admin))
	path := fmt.Sprintf("/%s/members/%s", group.ID.Hex(), member.ID.Hex())

	rec := doJSON(t, router, http.MethodPost, path, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("add member: status = %d, body %s", rec.Code, rec.Body.String())
	}

	store := groupstore.New(db)
	g, err := store.FindByID(testutil.Ctx(t), group.ID)
	if err != nil {
		t.Fatalf("reload group: %v", err)
	}
	if len(g.Members) != 1 || g.Members[0] != member.ID {
		t.Errorf("members = %v, want [%s]", g.Members, member.ID.Hex())
	}

	rec = doJSON(t, router, http.MethodDelete, path, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove member: status = %d", rec.Code)
	}
	g, err = store.FindByID(testutil.Ctx(t), group.ID)
	if err != nil {
		t.Fatalf("reload group: %v", err)
	}
	if len(g.Members) != 0 {
		t.Errorf("members = %v, want empty", g.Members)
	}
}

func TestDeleteNonEmptyGroupConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := &testutil.Fixtures{DB: db}

	admin := fx.User(t, models.RoleAdmin)
	member := fx.User(t, models.RoleResidente)
	group := fx.Group(t, admin.ID, member.ID)

	router := newRouter(db, actorFor(admin))

	rec := doJSON(t, router, http.MethodDelete, "/"+group.ID.Hex(), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete non-empty: status = %d, want 409", rec.Code)
	}
}

func TestListVisibleToStaffOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := &testutil.Fixtures{DB: db}

	admin := fx.User(t, models.RoleAdmin)
	docente := fx.User(t, models.RoleDocente)
	residente := fx.User(t, models.RoleResidente)
	fx.Group(t, admin.ID)

	if rec := doJSON(t, newRouter(db, actorFor(docente)), http.MethodGet, "/", nil); rec.Code != http.StatusOK {
		t.Errorf("docente list: status = %d, want 200", rec.Code)
	}
	if rec := doJSON(t, newRouter(db, actorFor(residente)), http.MethodGet, "/", nil); rec.Code != http.StatusForbidden {
		t.Errorf("residente list: status = %d, want 403", rec.Code)
	}
}
