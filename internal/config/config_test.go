package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Krimson/sportscan/pkg/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Profile != models.ProfileUmpire {
		t.Errorf("Expected profile umpire, got %s", cfg.Profile)
	}
	if cfg.Classifier.Timeout != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.Classifier.Timeout)
	}
	if cfg.Store.Driver != "sqlite3" {
		t.Errorf("Expected sqlite3 driver, got %s", cfg.Store.Driver)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
profile: exercise
http_port: "9000"
classifier:
  stage_one_url: http://ml:5000/predict
  timeout: 30s
  endpoints:
    coordination: http://ml:5001/inout
store:
  driver: postgres
  dsn: postgres://u:p@db/sportscan?sslmode=disable
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("CLASSIFIER_ENDPOINTS", "rotation=http://ml:5002/process_video")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Profile != models.ProfileExercise {
		t.Errorf("Expected profile exercise, got %s", cfg.Profile)
	}
	if cfg.HTTPPort != "9100" {
		t.Errorf("Expected env to override port, got %s", cfg.HTTPPort)
	}
	if cfg.Classifier.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.Classifier.Timeout)
	}
	if cfg.Classifier.Endpoints["coordination"] != "http://ml:5001/inout" {
		t.Errorf("Expected coordination endpoint from file, got %q", cfg.Classifier.Endpoints["coordination"])
	}
	if cfg.Classifier.Endpoints["rotation"] != "http://ml:5002/process_video" {
		t.Errorf("Expected rotation endpoint from env, got %q", cfg.Classifier.Endpoints["rotation"])
	}
	if cfg.Store.Driver != "postgres" {
		t.Errorf("Expected postgres driver, got %s", cfg.Store.Driver)
	}
}

func TestLoadRejectsUnknownProfile(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "profile: basketball\n"))

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown profile")
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "profile: [umpire\n"))

	if _, err := Load(); err == nil {
		t.Error("Expected parse error")
	}
}

func TestValidateConfidenceUnit(t *testing.T) {
	cfg := Default()
	cfg.Classifier.ConfidenceUnit = "ratio"

	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unknown confidence unit")
	}
}
