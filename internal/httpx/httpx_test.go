package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Krimson/sportscan/pkg/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad enum", models.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("stage one: %w", models.ErrUpstreamUnavailable), http.StatusBadGateway},
		{fmt.Errorf("stage one: %w", models.ErrMalformedResponse), http.StatusBadGateway},
		{fmt.Errorf("%w: db down", models.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: record 1", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: classify", models.ErrBusy), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestRespondDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDomainError(rec, fmt.Errorf("%w: record 42", models.ErrNotFound))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	var body models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Status != http.StatusNotFound || body.Error != "not found: record 42" {
		t.Errorf("Unexpected body %+v", body)
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/records?limit=5&offset=abc", nil)

	if got := QueryInt(req, "limit", 50); got != 5 {
		t.Errorf("Expected 5, got %d", got)
	}
	if got := QueryInt(req, "offset", 0); got != 0 {
		t.Errorf("Expected default for malformed value, got %d", got)
	}
	if got := QueryInt(req, "missing", 7); got != 7 {
		t.Errorf("Expected default 7, got %d", got)
	}
}
