// internal/app/features/files/handler_test.go

package files_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/imagenix/mediateca/internal/app/features/files"
	filestore "github.com/imagenix/mediateca/internal/app/store/files"
	folderstore "github.com/imagenix/mediateca/internal/app/store/folders"
	groupstore "github.com/imagenix/mediateca/internal/app/store/groups"
	tagstore "github.com/imagenix/mediateca/internal/app/store/tags"
	"github.com/imagenix/mediateca/internal/app/system/authz"
	"github.com/imagenix/mediateca/internal/app/system/visibility"
	"github.com/imagenix/mediateca/internal/domain/models"
	"github.com/imagenix/mediateca/internal/testutil"
)

// asActor injects a fixed actor, standing in for the bearer-token
// middleware.
func asActor(actor visibility.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authz.WithActor(r.Context(), actor)))
		})
	}
}

func actorFor(u *models.User) visibility.Actor {
	return visibility.Actor{ID: u.ID, Role: u.Role, GroupIDs: u.Groups}
}

type testEnv struct {
	router  http.Handler
	objects *testutil.MemStorage
	fx      testutil.Fixtures
}

func newTestEnv(t *testing.T, actor visibility.Actor) testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	objects := testutil.NewMemStorage()
	h := files.NewHandler(
		filestore.New(db), folderstore.New(db), groupstore.New(db),
		tagstore.New(db), objects, zap.NewNop(),
	)
	return testEnv{
		router:  files.Routes(h, asActor(actor)),
		objects: objects,
		fx:      testutil.Fixtures{DB: db},
	}
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadStoresObjectAndMetadata(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.Fixtures{DB: db}
	admin := fx.User(t, models.RoleAdmin)
	folder := fx.Folder(t, admin.ID, nil, nil)

	objects := testutil.NewMemStorage()
	h := files.NewHandler(
		filestore.New(db), folderstore.New(db), groupstore.New(db),
		tagstore.New(db), objects, zap.NewNop(),
	)
	router := files.Routes(h, asActor(actorFor(admin)))

	body, contentType := multipartUpload(t, map[string]string{
		"folder":      folder.ID.Hex(),
		"description": "guía de sedación",
		"tags":        "sedación, UCI",
	}, "GuÃ­a rÃ¡pida.pdf", []byte("%PDF-1.4 test"))

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if objects.PutCalls != 1 {
		t.Errorf("PutCalls = %d, want 1", objects.PutCalls)
	}

	var envl struct {
		Data models.File `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envl); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	f := envl.Data
	if f.FileType != models.FileTypePDF {
		t.Errorf("file_type = %q, want pdf", f.FileType)
	}
	if strings.ContainsAny(f.Filename, `/\?%*:|"<>`) {
		t.Errorf("filename not sanitized: %q", f.Filename)
	}
	if len(f.Tags) != 2 {
		t.Errorf("tags = %d, want 2", len(f.Tags))
	}
	if f.Size == 0 || f.StorageID == "" {
		t.Errorf("object info not recorded: %+v", f)
	}
}

func TestUploadRequiresStaffRole(t *testing.T) {
	env := newTestEnv(t, visibility.Actor{ID: primitive.NewObjectID(), Role: models.RoleResidente})

	body, contentType := multipartUpload(t, map[string]string{}, "x.pdf", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if env.objects.PutCalls != 0 {
		t.Errorf("object stored despite forbidden request")
	}
}

func TestUploadRequiresFolderBeforeStorage(t *testing.T) {
	env := newTestEnv(t, visibility.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin})

	body, contentType := multipartUpload(t, map[string]string{
		"description": "sin carpeta",
	}, "x.pdf", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}
	if env.objects.PutCalls != 0 {
		t.Errorf("PutCalls = %d, want 0", env.objects.PutCalls)
	}
}

func TestUpdateMovesFileBetweenFolders(t *testing.T) {
	env := newTestEnv(t, visibility.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin})

	owner := env.fx.User(t, models.RoleAdmin)
	src := env.fx.Folder(t, owner.ID, nil, nil)
	dst := env.fx.Folder(t, owner.ID, nil, nil)
	file := env.fx.File(t, owner.ID, src.ID, nil)

	put := func(payload map[string]any) *httptest.ResponseRecorder {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		req := httptest.NewRequest(http.MethodPut, "/"+file.ID.Hex(), bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec
	}

	rec := put(map[string]any{"folder": dst.ID.Hex()})
	if rec.Code != http.StatusOK {
		t.Fatalf("move: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var envl struct {
		Data models.File `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envl.Data.Folder != dst.ID {
		t.Errorf("folder = %s, want %s", envl.Data.Folder.Hex(), dst.ID.Hex())
	}

	if rec := put(map[string]any{"folder": "not-a-hex-id"}); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed target: status = %d, want 400", rec.Code)
	}
	if rec := put(map[string]any{"folder": "65f000000000000000000000"}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown target: status = %d, want 404", rec.Code)
	}
}

func TestListRequiresFolder(t *testing.T) {
	env := newTestEnv(t, visibility.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec
	}

	if rec := get("/"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing folder: status = %d, want 400", rec.Code)
	}
	if rec := get("/?folder=zzz"); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed folder: status = %d, want 400", rec.Code)
	}

	owner := env.fx.User(t, models.RoleAdmin)
	folder := env.fx.Folder(t, owner.ID, nil, nil)
	if rec := get("/?folder=" + folder.ID.Hex()); rec.Code != http.StatusOK {
		t.Errorf("valid folder: status = %d, want 200", rec.Code)
	}
}

func TestLinkValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.Fixtures{DB: db}
	admin := fx.User(t, models.RoleAdmin)
	folder := fx.Folder(t, admin.ID, nil, nil)

	objects := testutil.NewMemStorage()
	h := files.NewHandler(
		filestore.New(db), folderstore.New(db), groupstore.New(db),
		tagstore.New(db), objects, zap.NewNop(),
	)
	router := files.Routes(h, asActor(actorFor(admin)))

	post := func(payload map[string]any) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/link", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := post(map[string]any{
		"filename": "charla", "url": "not-a-url", "folder": folder.ID.Hex(),
	}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad url: status = %d, want 400", rec.Code)
	}

	if rec := post(map[string]any{
		"filename": "charla", "url": "https://example.com/charla",
		"file_type": models.FileTypePDF, "folder": folder.ID.Hex(),
	}); rec.Code != http.StatusBadRequest {
		t.Errorf("non-link type: status = %d, want 400", rec.Code)
	}

	rec := post(map[string]any{
		"filename": "charla", "url": "https://example.com/charla",
		"file_type": models.FileTypeVideoLink, "folder": folder.ID.Hex(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("valid link: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if objects.PutCalls != 0 {
		t.Errorf("link registration touched object storage")
	}

	// Without an explicit type, YouTube hosts classify as video links.
	rec = post(map[string]any{
		"filename": "charla magistral", "url": "https://www.youtube.com/watch?v=abc123",
		"folder": folder.ID.Hex(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("youtube link: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var envl struct {
		Data models.File `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envl); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envl.Data.FileType != models.FileTypeVideoLink {
		t.Errorf("file_type = %q, want %q", envl.Data.FileType, models.FileTypeVideoLink)
	}
}

func TestDeleteReleasesObjectAndIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.Fixtures{DB: db}
	admin := fx.User(t, models.RoleAdmin)
	folder := fx.Folder(t, admin.ID, nil, nil)

	objects := testutil.NewMemStorage()
	obj, err := objects.Put(testutil.Ctx(t), "doc.pdf", strings.NewReader("content"), 7, "application/pdf")
	if err != nil {
		t.Fatalf("seed object: %v", err)
	}
	file := fx.File(t, admin.ID, folder.ID, func(f *models.File) { f.StorageID = obj.ID })

	h := files.NewHandler(
		filestore.New(db), folderstore.New(db), groupstore.New(db),
		tagstore.New(db), objects, zap.NewNop(),
	)
	router := files.Routes(h, asActor(actorFor(admin)))

	del := func() int {
		req := httptest.NewRequest(http.MethodDelete, "/"+file.ID.Hex(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := del(); code != http.StatusNoContent {
		t.Fatalf("first delete: status = %d", code)
	}
	if objects.Has(obj.ID) {
		t.Error("stored object not released")
	}
	count, err := db.Collection("files").CountDocuments(testutil.Ctx(t), bson.M{"_id": file.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Error("file record still present")
	}

	if code := del(); code != http.StatusNoContent {
		t.Errorf("second delete: status = %d, want 204", code)
	}
}

func TestListRejectsUnprivilegedRole(t *testing.T) {
	env := newTestEnv(t, visibility.Actor{ID: primitive.NewObjectID(), Role: models.RoleUsuario})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
