package record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Krimson/sportscan/internal/media"
	"github.com/Krimson/sportscan/pkg/models"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

// TestPublisher собирает опубликованные события
type TestPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *TestPublisher) Publish(event models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *TestPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// TestSaver имитирует сохранение текущего результата сессии
type TestSaver struct {
	manager *Manager
	path    string
	err     error
}

func (s *TestSaver) SaveCurrent(ctx context.Context, sessionID string) (*models.SignalRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	accuracy := 88.0
	return s.manager.Create(ctx, &models.NewRecord{
		ImagePath:  s.path,
		SignalType: "timeout",
		Accuracy:   &accuracy,
		Meaning:    "Signaling a timeout",
	})
}

type fixture struct {
	repo      *SQLRepository
	store     *media.LocalStore
	manager   *Manager
	publisher *TestPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := NewSQLRepository(ctx, DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	store, err := media.NewLocalStore(t.TempDir(), "/uploads/", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create media store: %v", err)
	}

	publisher := &TestPublisher{}
	manager := NewManager(repo, store, publisher, SignalTypesFor(models.ProfileUmpire), zap.NewNop())

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	manager.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	return &fixture{repo: repo, store: store, manager: manager, publisher: publisher}
}

func (f *fixture) savedMedia(t *testing.T) string {
	t.Helper()
	upload, err := media.PolicyFor(models.ProfileUmpire, 0).Check("signal.png", pngBytes)
	if err != nil {
		t.Fatalf("Failed to accept upload: %v", err)
	}
	path, err := f.store.Save(context.Background(), upload)
	if err != nil {
		t.Fatalf("Failed to save media: %v", err)
	}
	return path
}

func newRecord(path, signalType string, accuracy float64) *models.NewRecord {
	return &models.NewRecord{
		ImagePath:  path,
		SignalType: signalType,
		Accuracy:   &accuracy,
		Meaning:    "Signaling a timeout",
	}
}

func TestReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := f.savedMedia(t)

	referenced, err := f.manager.Referenced(ctx, path)
	if err != nil {
		t.Fatalf("Referenced failed: %v", err)
	}
	if referenced {
		t.Error("Expected unsaved media to be unreferenced")
	}

	record, err := f.manager.Create(ctx, newRecord(path, "timeout", 70))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if referenced, _ = f.manager.Referenced(ctx, path); !referenced {
		t.Error("Expected saved media to be referenced")
	}

	if err := f.manager.Delete(ctx, record.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if referenced, _ = f.manager.Referenced(ctx, path); referenced {
		t.Error("Expected media to be unreferenced after record delete")
	}
}

func TestCreateListDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := f.savedMedia(t)

	first, err := f.manager.Create(ctx, newRecord(path, "start_restart", 91))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := f.manager.Create(ctx, newRecord(path, "timeout", 64.5))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if second.ID == "" || second.ID == first.ID {
		t.Errorf("Expected distinct generated ids, got %q and %q", first.ID, second.ID)
	}
	if second.Suggestions != "" {
		t.Errorf("Expected empty default suggestions, got %q", second.Suggestions)
	}

	records, err := f.manager.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].ID != second.ID {
		t.Errorf("Expected newest record first, got %s", records[0].ID)
	}
	if !records[0].CreatedAt.Equal(second.CreatedAt) {
		t.Errorf("Expected createdAt %v, got %v", second.CreatedAt, records[0].CreatedAt)
	}
	if records[0].Accuracy != 64.5 {
		t.Errorf("Expected accuracy 64.5, got %v", records[0].Accuracy)
	}

	if err := f.manager.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	records, _ = f.manager.List(ctx, 10, 0)
	if len(records) != 1 || records[0].ID != first.ID {
		t.Errorf("Expected only first record after delete, got %d records", len(records))
	}

	if err := f.manager.Delete(ctx, second.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
	if _, err := f.manager.Get(ctx, second.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found on get, got %v", err)
	}

	want := []string{models.EventRecordCreated, models.EventRecordCreated, models.EventRecordDeleted}
	got := f.publisher.Types()
	if len(got) != len(want) {
		t.Fatalf("Expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := f.savedMedia(t)

	tests := []struct {
		name string
		req  *models.NewRecord
	}{
		{"bad enum", newRecord(path, "high_five", 80)},
		{"accuracy above range", newRecord(path, "timeout", 100.1)},
		{"accuracy below range", newRecord(path, "timeout", -1)},
		{"unknown image", newRecord("/uploads/missing.png", "timeout", 80)},
		{"missing accuracy", &models.NewRecord{ImagePath: path, SignalType: "timeout", Meaning: "m"}},
		{"missing meaning", &models.NewRecord{ImagePath: path, SignalType: "timeout", Accuracy: new(float64)}},
		{"missing image", newRecord("", "timeout", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.manager.Create(ctx, tt.req); !errors.Is(err, models.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}

	records, _ := f.manager.List(ctx, 10, 0)
	if len(records) != 0 {
		t.Errorf("Expected rejected records not to be listed, got %d", len(records))
	}
}

func TestFreeTextSignalType(t *testing.T) {
	f := newFixture(t)
	manager := NewManager(f.repo, f.store, nil, SignalTypesFor(models.ProfileExercise), zap.NewNop())

	record, err := manager.Create(context.Background(), newRecord(f.savedMedia(t), "In_out", 42))
	if err != nil {
		t.Fatalf("Expected free text signal type to be accepted, got %v", err)
	}
	if record.SignalType != "In_out" {
		t.Errorf("Expected In_out, got %s", record.SignalType)
	}
}

func TestListPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	path := f.savedMedia(t)

	var ids []string
	for i := 0; i < 5; i++ {
		record, err := f.manager.Create(ctx, newRecord(path, "timeout", float64(50+i)))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, record.ID)
	}

	page, err := f.manager.List(ctx, 2, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(page))
	}
	if page[0].ID != ids[3] || page[1].ID != ids[2] {
		t.Errorf("Unexpected page order: %s, %s", page[0].ID, page[1].ID)
	}
}

func newRouter(f *fixture, saver SessionSaver) *mux.Router {
	router := mux.NewRouter()
	NewHTTPHandler(f.manager, f.store, media.PolicyFor(models.ProfileUmpire, 0), saver, zap.NewNop()).RegisterRoutes(router)
	return router
}

func multipartBody(t *testing.T, withFile bool, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if withFile {
		part, err := mw.CreateFormFile("file", "signal.png")
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write(pngBytes)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestHTTPCreateMultipart(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f, nil)

	body, contentType := multipartBody(t, true, map[string]string{
		"signalType":  "direction_pass",
		"accuracy":    "77.5",
		"meaning":     "Indicates direction of pass",
		"suggestions": "Keep going",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/signals", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var record models.SignalRecord
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if record.Accuracy != 77.5 || record.SignalType != "direction_pass" {
		t.Errorf("Unexpected record %+v", record)
	}
	if exists, _ := f.store.Exists(context.Background(), record.ImagePath); !exists {
		t.Errorf("Expected media %s to be stored", record.ImagePath)
	}
}

func TestHTTPCreateRejectsBadEnum(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f, nil)

	body, contentType := multipartBody(t, true, map[string]string{
		"signalType": "thumbs_up",
		"accuracy":   "80",
		"meaning":    "m",
	})
	req := httptest.NewRequest(http.MethodPost, "/records", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	var errResp models.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&errResp)
	if errResp.Status != http.StatusBadRequest || errResp.Error == "" {
		t.Errorf("Unexpected error body %+v", errResp)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records", nil))
	var records []models.SignalRecord
	json.NewDecoder(rec.Body).Decode(&records)
	if len(records) != 0 {
		t.Errorf("Expected no records listed, got %d", len(records))
	}
}

func TestHTTPCreateFromJSON(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f, nil)
	path := f.savedMedia(t)

	payload, _ := json.Marshal(map[string]interface{}{
		"imagePath":  path,
		"signalType": "timeout",
		"accuracy":   93,
		"meaning":    "Signaling a timeout",
	})
	req := httptest.NewRequest(http.MethodPost, "/records", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHTTPCreateFromSession(t *testing.T) {
	f := newFixture(t)
	path := f.savedMedia(t)

	router := newRouter(f, &TestSaver{manager: f.manager, path: path})
	body, contentType := multipartBody(t, false, map[string]string{"session_id": "s1"})
	req := httptest.NewRequest(http.MethodPost, "/records", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	busy := newRouter(f, &TestSaver{err: models.ErrBusy})
	body, contentType = multipartBody(t, false, map[string]string{"session_id": "s1"})
	req = httptest.NewRequest(http.MethodPost, "/records", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	busy.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", rec.Code)
	}
}

func TestHTTPGetAndDelete(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f, nil)
	record, err := f.manager.Create(context.Background(), newRecord(f.savedMedia(t), "timeout", 70))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/"+record.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/signals/"+record.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp models.DeleteResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Message != "Signal removed" || resp.ID != record.ID {
		t.Errorf("Unexpected delete response %+v", resp)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/records/"+record.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on repeated delete, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records/"+record.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}

func TestHTTPStorageUnavailable(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f, nil)
	f.repo.Close()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}
