// internal/app/features/users/handler_test.go

package users_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/imagenix/mediateca/internal/app/features/users"
	groupstore "github.com/imagenix/mediateca/internal/app/store/groups"
	userstore "github.com/imagenix/mediateca/internal/app/store/users"
	"github.com/imagenix/mediateca/internal/app/system/authn"
	"github.com/imagenix/mediateca/internal/domain/models"
	"github.com/imagenix/mediateca/internal/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.MailRecorder, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	signer := authn.NewSigner("test-secret", time.Hour)
	mail := &testutil.MailRecorder{}
	h := users.NewHandler(store, groupstore.New(db), signer, mail, "http://localhost:8080", zap.NewNop())
	authed := authn.Middleware(signer, store, zap.NewNop())
	return users.Routes(h, authed), mail, db
}

// bearer mints a token for a fixture user with the test signing secret.
func bearer(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := authn.NewSigner("test-secret", time.Hour).Sign(u)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func postJSON(t *testing.T, router http.Handler, path string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// tokenFromEmail pulls the token query parameter out of the emailed link.
func tokenFromEmail(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "token=") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil {
			t.Fatalf("parse link %q: %v", line, err)
		}
		return u.Query().Get("token")
	}
	t.Fatal("no token link in email body")
	return ""
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	router, mail, _ := newTestRouter(t)

	rec := postJSON(t, router, "/register", map[string]any{
		"username": "ana", "email": "ana@example.com", "password": "secreta123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "secreta123") {
		t.Error("password echoed in response")
	}

	sent := mail.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	token := tokenFromEmail(t, sent[0].Body)

	// Login before verification is refused.
	rec = postJSON(t, router, "/login", map[string]any{
		"email": "ana@example.com", "password": "secreta123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login before verify: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/verify-email?token="+token, nil)
	vrec := httptest.NewRecorder()
	router.ServeHTTP(vrec, req)
	if vrec.Code != http.StatusOK {
		t.Fatalf("verify: status = %d, body %s", vrec.Code, vrec.Body.String())
	}

	rec = postJSON(t, router, "/login", map[string]any{
		"email": "ana@example.com", "password": "secreta123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", rec.Code, rec.Body.String())
	}

	var envl struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envl); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if envl.Data.Token == "" {
		t.Fatal("login returned no token")
	}

	// The token works against an authenticated route.
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+envl.Data.Token)
	mrec := httptest.NewRecorder()
	router.ServeHTTP(mrec, req)
	if mrec.Code != http.StatusOK {
		t.Errorf("me: status = %d, body %s", mrec.Code, mrec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	router, _, _ := newTestRouter(t)

	cases := []map[string]any{
		{"username": "", "email": "a@example.com", "password": "secreta123"},
		{"username": "ana", "email": "not-an-email", "password": "secreta123"},
		{"username": "ana", "email": "a@example.com", "password": "corta"},
	}
	for i, payload := range cases {
		if rec := postJSON(t, router, "/register", payload); rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, rec.Code)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := postJSON(t, router, "/register", map[string]any{
		"username": "beto", "email": "beto@example.com", "password": "secreta123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}

	rec = postJSON(t, router, "/login", map[string]any{
		"email": "beto@example.com", "password": "equivocada",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAdminUserManagement(t *testing.T) {
	router, _, db := newTestRouter(t)
	fx := &testutil.Fixtures{DB: db}

	admin := fx.User(t, models.RoleAdmin)
	docente := fx.User(t, models.RoleDocente)
	target := fx.User(t, models.RoleUsuario)

	do := func(as *models.User, method, path string, payload map[string]any) *httptest.ResponseRecorder {
		t.Helper()
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		req := httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", bearer(t, as))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(docente, http.MethodPut, "/"+target.ID.Hex(), map[string]any{"role": models.RoleDocente}); rec.Code != http.StatusForbidden {
		t.Errorf("docente update: status = %d, want 403", rec.Code)
	}

	rec := do(admin, http.MethodPut, "/"+target.ID.Hex(), map[string]any{"role": models.RoleResidente})
	if rec.Code != http.StatusOK {
		t.Fatalf("promote: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var envl struct {
		Data models.User `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envl.Data.Role != models.RoleResidente {
		t.Errorf("role = %q, want %q", envl.Data.Role, models.RoleResidente)
	}

	if rec := do(admin, http.MethodPut, "/"+admin.ID.Hex(), map[string]any{"role": models.RoleResidente}); rec.Code != http.StatusBadRequest {
		t.Errorf("self demotion: status = %d, want 400", rec.Code)
	}

	if rec := do(admin, http.MethodGet, "/"+target.ID.Hex(), nil); rec.Code != http.StatusOK {
		t.Errorf("get: status = %d, want 200", rec.Code)
	}

	if rec := do(admin, http.MethodDelete, "/"+target.ID.Hex(), nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d, want 204", rec.Code)
	}
	if rec := do(admin, http.MethodDelete, "/"+target.ID.Hex(), nil); rec.Code != http.StatusNoContent {
		t.Errorf("repeat delete: status = %d, want 204", rec.Code)
	}
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	router, mail, _ := newTestRouter(t)

	rec := postJSON(t, router, "/forgot-password", map[string]any{"email": "ghost@example.com"})
	if rec.Code != http.StatusOK {
		t.Errorf("unknown email: status = %d, want 200", rec.Code)
	}
	if len(mail.Sent()) != 0 {
		t.Errorf("email sent for unknown account")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	router, mail, _ := newTestRouter(t)

	if rec := postJSON(t, router, "/register", map[string]any{
		"username": "carla", "email": "carla@example.com", "password": "original123",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}
	verify := tokenFromEmail(t, mail.Sent()[0].Body)
	req := httptest.NewRequest(http.MethodGet, "/verify-email?token="+verify, nil)
	vrec := httptest.NewRecorder()
	router.ServeHTTP(vrec, req)
	if vrec.Code != http.StatusOK {
		t.Fatalf("verify: status = %d", vrec.Code)
	}

	if rec := postJSON(t, router, "/forgot-password", map[string]any{"email": "carla@example.com"}); rec.Code != http.StatusOK {
		t.Fatalf("forgot: status = %d", rec.Code)
	}
	sent := mail.Sent()
	reset := tokenFromEmail(t, sent[len(sent)-1].Body)

	if rec := postJSON(t, router, "/reset-password", map[string]any{
		"token": reset, "password": "renovada123",
	}); rec.Code != http.StatusOK {
		t.Fatalf("reset: status = %d, body %s", rec.Code, rec.Body.String())
	}

	if rec := postJSON(t, router, "/login", map[string]any{
		"email": "carla@example.com", "password": "renovada123",
	}); rec.Code != http.StatusOK {
		t.Errorf("login with new password: status = %d", rec.Code)
	}
	if rec := postJSON(t, router, "/login", map[string]any{
		"email": "carla@example.com", "password": "original123",
	}); rec.Code != http.StatusUnauthorized {
		t.Errorf("login with old password: status = %d, want 401", rec.Code)
	}
}
