package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Krimson/sportscan/pkg/models"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 32)...)
	mp4Bytes  = append([]byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'm', 'p', '4', '1'}, make([]byte, 32)...)
)

type testPart struct {
	filename string
	data     []byte
}

func multipartRequest(t *testing.T, files []testPart, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range files {
		part, err := mw.CreateFormFile(FieldFile, f.filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write(f.data)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analysis", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPolicyAcceptsImage(t *testing.T) {
	policy := PolicyFor(models.ProfileUmpire, 0)

	upload, err := policy.Check("signal.PNG", pngBytes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if upload.Kind != models.MediaKindImage {
		t.Errorf("Expected image kind, got %s", upload.Kind)
	}
	if upload.ContentType != "image/png" {
		t.Errorf("Expected image/png, got %s", upload.ContentType)
	}
	if upload.Ext != ".png" {
		t.Errorf("Expected .png, got %s", upload.Ext)
	}
	if policy.MaxBytes != DefaultImageMaxBytes {
		t.Errorf("Expected default image limit, got %d", policy.MaxBytes)
	}
}

func TestPolicyRejectsWrongType(t *testing.T) {
	tests := []struct {
		name     string
		profile  models.Profile
		filename string
		data     []byte
	}{
		{"text as image", models.ProfileUmpire, "notes.txt", []byte("hello world")},
		{"video for umpire", models.ProfileUmpire, "clip.mp4", mp4Bytes},
		{"image for exercise", models.ProfileExercise, "signal.png", pngBytes},
		{"renamed text", models.ProfileUmpire, "fake.jpg", []byte("just some plain text here")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PolicyFor(tt.profile, 0).Check(tt.filename, tt.data)
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestPolicyAcceptsVideo(t *testing.T) {
	upload, err := PolicyFor(models.ProfileExercise, 0).Check("drill.mp4", mp4Bytes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if upload.Kind != models.MediaKindVideo {
		t.Errorf("Expected video kind, got %s", upload.Kind)
	}
}

func TestPolicyRejectsEmptyAndOversize(t *testing.T) {
	policy := PolicyFor(models.ProfileUmpire, 16)

	if _, err := policy.Check("a.png", nil); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation error for empty file, got %v", err)
	}
	if _, err := policy.Check("a.png", pngBytes); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation error for oversize file, got %v", err)
	}
}

func TestFromRequestRejectsMultipleFiles(t *testing.T) {
	req := multipartRequest(t, []testPart{
		{"a.png", pngBytes},
		{"b.jpg", jpegBytes},
	}, nil)

	_, err := PolicyFor(models.ProfileUmpire, 0).FromRequest(httptest.NewRecorder(), req)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "exactly one") {
		t.Errorf("Expected exactly-one message, got %q", err.Error())
	}
}

func TestFromRequestMissingFile(t *testing.T) {
	req := multipartRequest(t, nil, map[string]string{"session_id": "s1"})

	_, err := PolicyFor(models.ProfileUmpire, 0).FromRequest(httptest.NewRecorder(), req)
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestFromRequestSingleFile(t *testing.T) {
	req := multipartRequest(t, []testPart{{"signal.jpg", jpegBytes}}, map[string]string{"session_id": "s1"})

	upload, err := PolicyFor(models.ProfileUmpire, 0).FromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if upload.ContentType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", upload.ContentType)
	}
	if req.FormValue("session_id") != "s1" {
		t.Errorf("Expected form fields to stay readable, got %q", req.FormValue("session_id"))
	}
}

func TestLocalStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir(), "/uploads/", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	upload, _ := PolicyFor(models.ProfileUmpire, 0).Check("signal.png", pngBytes)
	path, err := store.Save(ctx, upload)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(path, "/uploads/") || !strings.HasSuffix(path, ".png") {
		t.Errorf("Expected /uploads/<uuid>.png, got %s", path)
	}

	exists, err := store.Exists(ctx, path)
	if err != nil || !exists {
		t.Fatalf("Expected saved media to exist, got %v, %v", exists, err)
	}

	f, err := store.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	if !bytes.Equal(data, pngBytes) {
		t.Error("Expected stored bytes to match upload")
	}

	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if exists, _ := store.Exists(ctx, path); exists {
		t.Error("Expected media to be gone after delete")
	}
	if err := store.Delete(ctx, path); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, _ := NewLocalStore(t.TempDir(), "/uploads/", zap.NewNop())

	for _, path := range []string{"/uploads/../secret", "/etc/passwd", "/uploads/", "/uploads/a/b.png"} {
		exists, err := store.Exists(ctx, path)
		if err != nil || exists {
			t.Errorf("Expected %q to be reported missing, got %v, %v", path, exists, err)
		}
		if _, err := store.Open(ctx, path); err == nil {
			t.Errorf("Expected open of %q to fail", path)
		}
	}
}

func TestHTTPHandlerServesMedia(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir(), "/uploads/", zap.NewNop())
	upload, _ := PolicyFor(models.ProfileUmpire, 0).Check("signal.png", pngBytes)
	path, _ := store.Save(context.Background(), upload)

	router := mux.NewRouter()
	NewHTTPHandler(store, "/uploads/", zap.NewNop()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("Expected image/png, got %s", rec.Header().Get("Content-Type"))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestNewMinioStoreRequiresOptions(t *testing.T) {
	complete := MinioOptions{
		Endpoint:        "localhost:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		Bucket:          "media",
	}
	tests := map[string]func(*MinioOptions){
		"endpoint":   func(o *MinioOptions) { o.Endpoint = "" },
		"access key": func(o *MinioOptions) { o.AccessKeyID = "" },
		"secret key": func(o *MinioOptions) { o.SecretAccessKey = "" },
		"bucket":     func(o *MinioOptions) { o.Bucket = "" },
	}

	for name, unset := range tests {
		opts := complete
		unset(&opts)
		if _, err := NewMinioStore(context.Background(), opts, "/uploads/", zap.NewNop()); err == nil {
			t.Errorf("Expected error without %s", name)
		}
	}
}
