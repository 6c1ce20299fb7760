package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Krimson/sportscan/pkg/models"
)

// Config содержит все настройки приложения
type Config struct {
	// Server settings
	HTTPPort    string         `yaml:"http_port"`
	GRPCPort    string         `yaml:"grpc_port"`
	Profile     models.Profile `yaml:"profile"`
	CORSOrigins string         `yaml:"cors_origins"`

	Log        LogConfig        `yaml:"log"`
	Redis      RedisConfig      `yaml:"redis"`
	Store      StoreConfig      `yaml:"store"`
	Media      MediaConfig      `yaml:"media"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Feedback   FeedbackConfig   `yaml:"feedback"`
	Presenter  PresenterConfig  `yaml:"presenter"`
}

type LogConfig struct {
	Level             string `yaml:"level"`
	Encoding          string `yaml:"encoding"`
	Development       bool   `yaml:"development"`
	DisableCaller     bool   `yaml:"disable_caller"`
	DisableStacktrace bool   `yaml:"disable_stacktrace"`
	Sampling          bool   `yaml:"sampling"`
}

// RedisConfig - хранилище текущих результатов сессий. Enabled=false включает in-memory хранилище
type RedisConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// StoreConfig - хранилище записей (postgres | sqlite3)
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type MediaConfig struct {
	Backend   string      `yaml:"backend"` // local | minio
	Dir       string      `yaml:"dir"`
	URLPrefix string      `yaml:"url_prefix"`
	MaxBytes  int64       `yaml:"max_bytes"`
	Minio     MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// ClassifierConfig - внешние ML сервисы
type ClassifierConfig struct {
	StageOneURL    string            `yaml:"stage_one_url"`
	Timeout        time.Duration     `yaml:"timeout"`
	ConfidenceUnit string            `yaml:"confidence_unit"` // auto | fraction | percent
	Endpoints      map[string]string `yaml:"endpoints"`
}

type FeedbackConfig struct {
	ReferenceURL string `yaml:"reference_url"`
}

type PresenterConfig struct {
	CatalogPath string `yaml:"catalog_path"`
	StaticDir   string `yaml:"static_dir"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		HTTPPort:    "8080",
		GRPCPort:    "50051",
		Profile:     models.ProfileUmpire,
		CORSOrigins: "*",
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			SessionTTL: time.Hour,
		},
		Store: StoreConfig{
			Driver: "sqlite3",
			DSN:    "file:sportscan.db?_foreign_keys=on",
		},
		Media: MediaConfig{
			Backend:   "local",
			Dir:       "uploads",
			URLPrefix: "/uploads/",
		},
		Classifier: ClassifierConfig{
			StageOneURL:    "http://localhost:5000/predict",
			Timeout:        60 * time.Second,
			ConfidenceUnit: "auto",
			Endpoints:      map[string]string{},
		},
	}
}

// Load загружает конфигурацию: значения по умолчанию, затем YAML файл, затем переменные окружения
func Load() (*Config, error) {
	cfg := Default()

	path := getEnvString("CONFIG_PATH", "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPPort = getEnvString("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = getEnvString("GRPC_PORT", cfg.GRPCPort)
	cfg.Profile = models.Profile(getEnvString("PROFILE", string(cfg.Profile)))
	cfg.CORSOrigins = getEnvString("CORS_ORIGINS", cfg.CORSOrigins)

	cfg.Log.Level = getEnvString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Encoding = getEnvString("LOG_ENCODING", cfg.Log.Encoding)
	cfg.Log.Development = getEnvBool("LOG_DEVELOPMENT", cfg.Log.Development)

	// Redis
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = getEnvString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnvString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.SessionTTL = getEnvDuration("SESSION_TTL", cfg.Redis.SessionTTL)

	// Records
	cfg.Store.Driver = getEnvString("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.DSN = getEnvString("STORE_DSN", cfg.Store.DSN)

	// Media
	cfg.Media.Backend = getEnvString("MEDIA_BACKEND", cfg.Media.Backend)
	cfg.Media.Dir = getEnvString("MEDIA_DIR", cfg.Media.Dir)
	cfg.Media.MaxBytes = getEnvInt64("MEDIA_MAX_BYTES", cfg.Media.MaxBytes)
	cfg.Media.Minio.Endpoint = getEnvString("MINIO_ENDPOINT", cfg.Media.Minio.Endpoint)
	cfg.Media.Minio.AccessKeyID = getEnvString("MINIO_ACCESS_KEY_ID", cfg.Media.Minio.AccessKeyID)
	cfg.Media.Minio.SecretAccessKey = getEnvString("MINIO_SECRET_ACCESS_KEY", cfg.Media.Minio.SecretAccessKey)
	cfg.Media.Minio.Bucket = getEnvString("MINIO_BUCKET_NAME", cfg.Media.Minio.Bucket)
	cfg.Media.Minio.UseSSL = getEnvBool("MINIO_USE_SSL", cfg.Media.Minio.UseSSL)

	// External services
	cfg.Classifier.StageOneURL = getEnvString("CLASSIFIER_URL", cfg.Classifier.StageOneURL)
	cfg.Classifier.Timeout = getEnvDuration("CLASSIFIER_TIMEOUT", cfg.Classifier.Timeout)
	cfg.Classifier.ConfidenceUnit = getEnvString("CLASSIFIER_CONFIDENCE_UNIT", cfg.Classifier.ConfidenceUnit)
	if value := os.Getenv("CLASSIFIER_ENDPOINTS"); value != "" {
		// формат: coordination=http://host/inout,rotation=http://host/process_video
		for _, pair := range strings.Split(value, ",") {
			name, url, ok := strings.Cut(strings.TrimSpace(pair), "=")
			if !ok || name == "" {
				continue
			}
			if cfg.Classifier.Endpoints == nil {
				cfg.Classifier.Endpoints = map[string]string{}
			}
			cfg.Classifier.Endpoints[name] = url
		}
	}

	cfg.Feedback.ReferenceURL = getEnvString("FEEDBACK_REFERENCE_URL", cfg.Feedback.ReferenceURL)
	cfg.Presenter.CatalogPath = getEnvString("PRESENTER_CATALOG_PATH", cfg.Presenter.CatalogPath)
	cfg.Presenter.StaticDir = getEnvString("PRESENTER_STATIC_DIR", cfg.Presenter.StaticDir)
}

// Validate проверяет значения, которые нельзя исправить значениями по умолчанию
func (c *Config) Validate() error {
	if !c.Profile.Valid() {
		return fmt.Errorf("unknown profile %q", c.Profile)
	}
	switch c.Store.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Media.Backend {
	case "local", "minio":
	default:
		return fmt.Errorf("unknown media backend %q", c.Media.Backend)
	}
	switch c.Classifier.ConfidenceUnit {
	case "auto", "fraction", "percent":
	default:
		return fmt.Errorf("unknown confidence unit %q", c.Classifier.ConfidenceUnit)
	}
	if c.Classifier.StageOneURL == "" {
		return errors.New("classifier.stage_one_url is required")
	}
	if c.Classifier.Timeout <= 0 {
		return errors.New("classifier.timeout must be positive")
	}
	if c.Media.MaxBytes < 0 {
		return errors.New("media.max_bytes must not be negative")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
