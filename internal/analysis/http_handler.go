package analysis

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Krimson/sportscan/internal/httpx"
	"github.com/Krimson/sportscan/internal/media"
	"github.com/Krimson/sportscan/pkg/models"
)

// HTTPHandler обрабатывает HTTP запросы анализа (Presentation Layer)
type HTTPHandler struct {
	service *Service
	policy  media.Policy
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, policy media.Policy, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		policy:  policy,
		logger:  logger,
	}
}

// RegisterRoutes регистрирует маршруты в роутере
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/analysis").Subrouter()

	api.HandleFunc("", h.Analyze).Methods("POST")
	api.HandleFunc("/{id}", h.GetCurrent).Methods("GET")
	api.HandleFunc("/{id}", h.Clear).Methods("DELETE")
	api.HandleFunc("/{id}/save", h.Save).Methods("POST")
}

// Analyze классифицирует загруженный файл
// @Summary Классифицировать медиафайл
// @Description Проверяет файл, отправляет его первичному классификатору, при совпадении маршрута - специализированному анализатору, и возвращает результат с рекомендациями
// @Tags Analysis
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Изображение или видео"
// @Param session_id formData string false "ID сессии (генерируется автоматически если не указан)"
// @Success 200 {object} models.AnalyzeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/analysis [post]
func (h *HTTPHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	upload, err := h.policy.FromRequest(w, r)
	if err != nil {
		httpx.RespondDomainError(w, err)
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	session, err := h.service.Analyze(r.Context(), sessionID, upload)
	if err != nil {
		httpx.RespondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, models.AnalyzeResponse{
		SessionID:    session.SessionID,
		Status:       "analyzed",
		Result:       session.Result,
		Presentation: session.Presentation,
	})
}

// GetCurrent возвращает текущий результат сессии
// @Summary Текущий результат сессии
// @Tags Analysis
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} models.AnalysisSession
// @Failure 404 {object} models.ErrorResponse
// @Router /api/analysis/{id} [get]
func (h *HTTPHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := h.service.Current(r.Context(), sessionID)
	if err != nil {
		httpx.RespondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, session)
}

// Clear сбрасывает текущий результат
// @Summary Сбросить текущий результат
// @Tags Analysis
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/analysis/{id} [delete]
func (h *HTTPHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := h.service.Clear(r.Context(), sessionID); err != nil {
		httpx.RespondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Session cleared",
		"session_id": sessionID,
	})
}

// Save сохраняет текущий результат в историю
// @Summary Сохранить текущий результат
// @Tags Analysis
// @Produce json
// @Param id path string true "ID сессии"
// @Success 201 {object} models.SignalRecord
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/analysis/{id}/save [post]
func (h *HTTPHandler) Save(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	record, err := h.service.SaveCurrent(r.Context(), sessionID)
	if err != nil {
		if httpx.StatusFor(err) >= http.StatusInternalServerError {
			h.logger.Error("failed to save session result",
				zap.String("session_id", sessionID), zap.Error(err))
		}
		httpx.RespondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, record)
}
