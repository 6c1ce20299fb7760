package media

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Krimson/sportscan/internal/httpx"
	"github.com/Krimson/sportscan/pkg/models"
)

// HTTPHandler раздает сохраненные файлы только на чтение
type HTTPHandler struct {
	store  Store
	prefix string
	logger *zap.Logger
}

func NewHTTPHandler(store Store, urlPrefix string, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		store:  store,
		prefix: newPathNamer(urlPrefix).prefix,
		logger: logger,
	}
}

// RegisterRoutes регистрирует маршруты в роутере
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(h.prefix+"{name}", h.ServeMedia).Methods("GET", "HEAD")
}

// ServeMedia отдает файл по имени
// GET /uploads/{name}
func (h *HTTPHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	f, err := h.store.Open(r.Context(), h.prefix+name)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrValidation) {
			httpx.RespondError(w, http.StatusNotFound, "Media not found")
			return
		}
		h.logger.Error("failed to open media", zap.String("name", name), zap.Error(err))
		httpx.RespondDomainError(w, err)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, name, time.Time{}, f)
}
