package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Krimson/sportscan/internal/httpx"
)

// Pinger - зависимость, доступность которой проверяется
type Pinger interface {
	Ping(ctx context.Context) error
}

// DependencyReport - результат проверки одной зависимости
type DependencyReport struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ServiceReport struct {
	Status       string                      `json:"status"`
	Dependencies map[string]DependencyReport `json:"dependencies"`
}

// Report - ответ GET /api/health
type Report struct {
	Status    string                   `json:"status"`
	Services  map[string]ServiceReport `json:"services"`
	Timestamp time.Time                `json:"timestamp"`
}

// HealthServer реализует gRPC health v1 и HTTP проверку.
// Статус сервиса пересчитывается пингом его зависимостей при каждом запросе
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	mu       sync.RWMutex
	services map[string]grpc_health_v1.HealthCheckResponse_ServingStatus
	deps     map[string]map[string]Pinger
	draining bool
	timeout  time.Duration
	logger   *zap.Logger
}

func NewHealthServer(timeout time.Duration, logger *zap.Logger) *HealthServer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthServer{
		services: make(map[string]grpc_health_v1.HealthCheckResponse_ServingStatus),
		deps:     make(map[string]map[string]Pinger),
		timeout:  timeout,
		logger:   logger,
	}
}

// AddService регистрирует сервис и его зависимости
func (h *HealthServer) AddService(service string, deps map[string]Pinger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deps[service] = deps
	h.services[service] = grpc_health_v1.HealthCheckResponse_SERVING
}

// Probe пингует все зависимости и обновляет статусы сервисов
func (h *HealthServer) Probe(ctx context.Context) Report {
	h.mu.RLock()
	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	report := Report{
		Status:    "ok",
		Services:  make(map[string]ServiceReport, len(names)),
		Timestamp: time.Now().UTC(),
	}

	for _, name := range names {
		service := h.probeService(ctx, name)
		if service.Status != "ok" {
			report.Status = "degraded"
		}
		report.Services[name] = service
	}

	h.mu.RLock()
	if h.draining {
		report.Status = "draining"
	}
	h.mu.RUnlock()

	return report
}

func (h *HealthServer) probeService(ctx context.Context, service string) ServiceReport {
	h.mu.RLock()
	deps := h.deps[service]
	h.mu.RUnlock()

	report := ServiceReport{Status: "ok", Dependencies: make(map[string]DependencyReport, len(deps))}
	for name, dep := range deps {
		pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := dep.Ping(pingCtx)
		cancel()

		if err != nil {
			h.logger.Warn("dependency unavailable",
				zap.String("service", service), zap.String("dependency", name), zap.Error(err))
			report.Status = "unavailable"
			report.Dependencies[name] = DependencyReport{Status: "unavailable", Error: err.Error()}
			continue
		}
		report.Dependencies[name] = DependencyReport{Status: "ok"}
	}

	servingStatus := grpc_health_v1.HealthCheckResponse_SERVING
	if report.Status != "ok" {
		servingStatus = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}

	h.mu.Lock()
	if !h.draining {
		h.services[service] = servingStatus
	}
	h.mu.Unlock()

	return report
}

func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	service := req.GetService()

	h.mu.RLock()
	_, known := h.deps[service]
	h.mu.RUnlock()

	if service == "" {
		h.Probe(ctx)
	} else if known {
		h.probeService(ctx, service)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if service == "" {
		overall := grpc_health_v1.HealthCheckResponse_SERVING
		if h.draining {
			overall = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
		for _, s := range h.services {
			if s != grpc_health_v1.HealthCheckResponse_SERVING {
				overall = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			}
		}
		return &grpc_health_v1.HealthCheckResponse{Status: overall}, nil
	}

	servingStatus, exists := h.services[service]
	if !exists {
		return nil, status.Error(codes.NotFound, "service not found")
	}

	return &grpc_health_v1.HealthCheckResponse{
		Status: servingStatus,
	}, nil
}

func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	response, err := h.Check(stream.Context(), req)
	if err != nil {
		return err
	}

	if err := stream.Send(response); err != nil {
		return err
	}

	<-stream.Context().Done()
	return stream.Context().Err()
}

// SetNotServing переводит все сервисы в NOT_SERVING перед остановкой
func (h *HealthServer) SetNotServing() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.draining = true
	for service := range h.services {
		h.services[service] = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
}

// ServeHTTP отвечает на GET /api/health
// @Summary Проверка состояния
// @Description Пингует хранилище записей, хранилище медиа и хранилище сессий
// @Tags Health
// @Produce json
// @Success 200 {object} health.Report
// @Failure 503 {object} health.Report
// @Router /api/health [get]
func (h *HealthServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := h.Probe(r.Context())

	code := http.StatusOK
	if report.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	httpx.RespondJSON(w, code, report)
}
