package record

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Krimson/sportscan/internal/httpx"
	"github.com/Krimson/sportscan/internal/media"
	"github.com/Krimson/sportscan/pkg/models"
)

// HTTPHandler обрабатывает HTTP запросы для записей (Presentation Layer)
type HTTPHandler struct {
	manager *Manager
	store   media.Store
	policy  media.Policy
	saver   SessionSaver
	logger  *zap.Logger
}

// NewHTTPHandler создает HTTP обработчик. saver может быть nil
func NewHTTPHandler(manager *Manager, store media.Store, policy media.Policy, saver SessionSaver, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		manager: manager,
		store:   store,
		policy:  policy,
		saver:   saver,
		logger:  logger,
	}
}

// RegisterRoutes регистрирует маршруты в роутере. /api/signals - пути веб-клиента
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	for _, prefix := range []string{"/records", "/api/signals"} {
		api := router.PathPrefix(prefix).Subrouter()

		api.HandleFunc("", h.ListRecords).Methods("GET")
		api.HandleFunc("", h.CreateRecord).Methods("POST")
		api.HandleFunc("/{id}", h.GetRecord).Methods("GET")
		api.HandleFunc("/{id}", h.DeleteRecord).Methods("DELETE")
	}
}

// ListRecords возвращает историю записей
// @Summary История записей
// @Description Возвращает записи от новых к старым
// @Tags Records
// @Produce json
// @Param limit query int false "Количество записей" default(50)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {array} models.SignalRecord
// @Failure 503 {object} models.ErrorResponse
// @Router /records [get]
func (h *HTTPHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	limit := httpx.QueryInt(r, "limit", DefaultListLimit)
	offset := httpx.QueryInt(r, "offset", 0)

	records, err := h.manager.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list records", zap.Error(err))
		httpx.RespondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, records)
}

// GetRecord возвращает одну запись
// @Summary Получить запись
// @Tags Records
// @Produce json
// @Param id path string true "ID записи"
// @Success 200 {object} models.SignalRecord
// @Failure 404 {object} models.ErrorResponse
// @Router /records/{id} [get]
func (h *HTTPHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.manager.Get(r.Context(), id)
	if err != nil {
		httpx.RespondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, record)
}

// CreateRecord сохраняет запись
// @Summary Сохранить запись
// @Description multipart: file + signalType + accuracy + meaning + suggestions, либо session_id для сохранения текущего результата сессии.
// @Description application/json: NewRecord с imagePath уже сохраненного файла.
// @Tags Records
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param file formData file false "Медиафайл"
// @Param signalType formData string false "Тип сигнала"
// @Param accuracy formData number false "Точность, 0-100"
// @Param meaning formData string false "Значение"
// @Param suggestions formData string false "Рекомендации"
// @Param session_id formData string false "Сохранить текущий результат сессии"
// @Success 201 {object} models.SignalRecord
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /records [post]
func (h *HTTPHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		record *models.SignalRecord
		err    error
	)
	switch {
	case mediaType == "application/json":
		record, err = h.createFromJSON(r)
	case strings.HasPrefix(mediaType, "multipart/"):
		record, err = h.createFromForm(w, r)
	default:
		err = fmt.Errorf("%w: unsupported content type %q", models.ErrValidation, mediaType)
	}

	if err != nil {
		if httpx.StatusFor(err) >= http.StatusInternalServerError {
			h.logger.Error("failed to create record", zap.Error(err))
		}
		httpx.RespondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, record)
}

func (h *HTTPHandler) createFromJSON(r *http.Request) (*models.SignalRecord, error) {
	var req models.NewRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid request body: %v", models.ErrValidation, err)
	}
	return h.manager.Create(r.Context(), &req)
}

func (h *HTTPHandler) createFromForm(w http.ResponseWriter, r *http.Request) (*models.SignalRecord, error) {
	if err := h.policy.ParseForm(w, r); err != nil {
		return nil, err
	}

	if sessionID := r.FormValue("session_id"); sessionID != "" && !media.HasFile(r) {
		if h.saver == nil {
			return nil, fmt.Errorf("%w: session saving is not available", models.ErrValidation)
		}
		return h.saver.SaveCurrent(r.Context(), sessionID)
	}

	req := &models.NewRecord{
		SignalType:  r.FormValue("signalType"),
		Meaning:     r.FormValue("meaning"),
		Suggestions: r.FormValue("suggestions"),
	}
	if raw := r.FormValue("accuracy"); raw != "" {
		accuracy, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: accuracy %q is not a number", models.ErrValidation, raw)
		}
		req.Accuracy = &accuracy
	}

	upload, err := h.policy.FileFromForm(r)
	if err != nil {
		return nil, err
	}

	path, err := h.store.Save(r.Context(), upload)
	if err != nil {
		return nil, err
	}
	req.ImagePath = path

	record, err := h.manager.Create(r.Context(), req)
	if err != nil {
		// файл без записи не нужен
		if delErr := h.store.Delete(r.Context(), path); delErr != nil {
			h.logger.Warn("failed to remove orphan media", zap.String("path", path), zap.Error(delErr))
		}
		return nil, err
	}
	return record, nil
}

// DeleteRecord удаляет запись
// @Summary Удалить запись
// @Tags Records
// @Produce json
// @Param id path string true "ID записи"
// @Success 200 {object} models.DeleteResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /records/{id} [delete]
func (h *HTTPHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.manager.Delete(r.Context(), id); err != nil {
		if httpx.StatusFor(err) >= http.StatusInternalServerError {
			h.logger.Error("failed to delete record", zap.String("id", id), zap.Error(err))
		}
		httpx.RespondDomainError(w, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, models.DeleteResponse{
		Message: "Signal removed",
		ID:      id,
	})
}
