package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Krimson/sportscan/internal/analysis"
	"github.com/Krimson/sportscan/internal/classify"
	"github.com/Krimson/sportscan/internal/config"
	"github.com/Krimson/sportscan/internal/feedback"
	"github.com/Krimson/sportscan/internal/health"
	"github.com/Krimson/sportscan/internal/httpx"
	"github.com/Krimson/sportscan/internal/logger"
	"github.com/Krimson/sportscan/internal/media"
	"github.com/Krimson/sportscan/internal/presenter"
	"github.com/Krimson/sportscan/internal/record"
	"github.com/Krimson/sportscan/internal/websocket"

	_ "github.com/Krimson/sportscan/docs" // Swagger docs
)

// @title Sportscan API
// @version 1.0
// @description API для классификации спортивных действий по фото и видео.
// @description
// @description ## Описание
// @description Файл проверяется, отправляется первичному классификатору и, если для метки есть маршрут,
// @description специализированному анализатору. Результат дополняется рекомендациями и эталонными изображениями
// @description и может быть сохранен в историю.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting sportscan",
		zap.String("profile", string(cfg.Profile)),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("grpc_port", cfg.GRPCPort),
	)

	// Хранилище медиа
	mediaStore, err := newMediaStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Хранилище записей
	repo, err := record.NewSQLRepository(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer repo.Close()
	log.Info("connected to record store", zap.String("driver", cfg.Store.Driver))

	// Хранилище текущих результатов
	slots, err := newSlotStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer slots.Close()

	corsOrigins := splitOrigins(cfg.CORSOrigins)
	hub := websocket.NewHub(corsOrigins, log.Named("websocket"))
	go hub.Run(ctx)

	recordManager := record.NewManager(repo, mediaStore, hub, record.SignalTypesFor(cfg.Profile), log.Named("records"))

	// Классификация
	synth := feedback.NewSynthesizer(feedback.RulesFor(cfg.Profile, cfg.Feedback.ReferenceURL))
	unit := classify.ConfidenceUnit(cfg.Classifier.ConfidenceUnit)
	client := classify.NewClient(cfg.Classifier.Timeout, unit, log.Named("classifier"))
	pipeline, err := classify.NewPipeline(client, classify.NewRouter(classify.RoutesFor(cfg.Profile)),
		cfg.Classifier.StageOneURL, cfg.Classifier.Endpoints, synth, log.Named("pipeline"))
	if err != nil {
		return fmt.Errorf("invalid classifier routing: %w", err)
	}

	catalog := presenter.CatalogFor(cfg.Profile)
	if cfg.Presenter.CatalogPath != "" {
		catalog, err = presenter.LoadCatalog(cfg.Presenter.CatalogPath)
		if err != nil {
			return err
		}
	}

	policy := media.PolicyFor(cfg.Profile, cfg.Media.MaxBytes)
	analysisService := analysis.NewService(pipeline, mediaStore, presenter.New(catalog), slots,
		recordManager, hub, log.Named("analysis"))

	healthServer := health.NewHealthServer(2*time.Second, log.Named("health"))
	healthServer.AddService("records", map[string]health.Pinger{"repository": repo, "media": mediaStore})
	healthServer.AddService("analysis", map[string]health.Pinger{"slots": slots, "media": mediaStore})

	// Маршруты
	router := mux.NewRouter()
	record.NewHTTPHandler(recordManager, mediaStore, policy, analysisService, log.Named("records")).RegisterRoutes(router)
	analysis.NewHTTPHandler(analysisService, policy, log.Named("analysis")).RegisterRoutes(router)
	media.NewHTTPHandler(mediaStore, cfg.Media.URLPrefix, log.Named("media")).RegisterRoutes(router)

	router.Handle("/api/health", healthServer).Methods("GET")
	router.HandleFunc("/ws", hub.HandleWebSocket)
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	// Endpoint для отладки
	router.HandleFunc("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"records":    recordManager.Stats(r.Context()),
			"analysis":   analysisService.Stats(r.Context()),
			"websocket":  map[string]int{"clients": hub.Clients()},
			"profile":    cfg.Profile,
			"extensions": policy.Extensions(),
			"timestamp":  time.Now().Format(time.RFC3339),
		})
	}).Methods("GET")

	if cfg.Presenter.StaticDir != "" {
		router.PathPrefix("/reference/").Handler(
			http.StripPrefix("/reference/", http.FileServer(http.Dir(cfg.Presenter.StaticDir))))
	}

	readTimeout := readTimeoutFor(policy.MaxBytes)
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           enableCORS(corsOrigins, router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		// дедлайн записи отсчитывается от заголовков и покрывает загрузку тела
		WriteTimeout: readTimeout + cfg.Classifier.Timeout*2 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// gRPC health
	grpcServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port %s: %w", cfg.GRPCPort, err)
	}

	errChan := make(chan error, 2)
	go func() {
		log.Info("gRPC health server listening", zap.String("addr", listener.Addr().String()))
		if err := grpcServer.Serve(listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		log.Info("HTTP server listening",
			zap.String("addr", server.Addr),
			zap.String("swagger", "http://localhost:"+cfg.HTTPPort+"/swagger/index.html"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		log.Error("server error", zap.Error(err))
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	healthServer.SetNotServing()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	log.Info("server exited gracefully")
	return nil
}

// minUploadRate - самая медленная скорость загрузки, при которой файл максимального размера успевает дойти
const minUploadRate = 256 << 10

// readTimeoutFor дает время на чтение тела размером maxBytes поверх базовой минуты
func readTimeoutFor(maxBytes int64) time.Duration {
	return 60*time.Second + time.Duration(maxBytes/minUploadRate)*time.Second
}

func newMediaStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (media.Store, error) {
	if cfg.Media.Backend == "minio" {
		store, err := media.NewMinioStore(ctx, media.MinioOptions{
			Endpoint:        cfg.Media.Minio.Endpoint,
			AccessKeyID:     cfg.Media.Minio.AccessKeyID,
			SecretAccessKey: cfg.Media.Minio.SecretAccessKey,
			Bucket:          cfg.Media.Minio.Bucket,
			UseSSL:          cfg.Media.Minio.UseSSL,
		}, cfg.Media.URLPrefix, log.Named("media"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to minio: %w", err)
		}
		log.Info("using minio media store",
			zap.String("endpoint", cfg.Media.Minio.Endpoint), zap.String("bucket", cfg.Media.Minio.Bucket))
		return store, nil
	}

	store, err := media.NewLocalStore(cfg.Media.Dir, cfg.Media.URLPrefix, log.Named("media"))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare media dir: %w", err)
	}
	log.Info("using local media store", zap.String("dir", cfg.Media.Dir))
	return store, nil
}

func newSlotStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (analysis.SlotStore, error) {
	if !cfg.Redis.Enabled {
		log.Info("using in-memory session store")
		return analysis.NewMemoryStore(cfg.Redis.SessionTTL), nil
	}

	store, err := analysis.NewRedisStoreFromAddr(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	return store, nil
}

func splitOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func enableCORS(origins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range origins {
			if allowed == "*" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				break
			}
			if allowed == origin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				break
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
