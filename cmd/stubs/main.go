// Stubs - локальные заглушки внешних ML сервисов для разработки без моделей
package main

import (
	"context"
	"errors"
	"flag"
	"hash/fnv"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Krimson/sportscan/internal/feedback"
	"github.com/Krimson/sportscan/internal/httpx"
	"github.com/Krimson/sportscan/pkg/models"
)

var labels = map[models.Profile][]string{
	models.ProfileUmpire:   {"start_restart", "direction_pass", "timeout", feedback.InvalidUmpireLabel},
	models.ProfileExercise: {"In_out", "Zig_zag", "360_rotation", "Squat"},
}

// stubServer отвечает детерминированно: результат зависит только от содержимого файла
type stubServer struct {
	profile models.Profile
	logger  *zap.Logger
}

func main() {
	port := flag.String("port", "5000", "HTTP port for stub endpoints")
	profile := flag.String("profile", string(models.ProfileUmpire), "umpire | exercise")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if !models.Profile(*profile).Valid() {
		logger.Fatal("unknown profile", zap.String("profile", *profile))
	}

	s := &stubServer{profile: models.Profile(*profile), logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/predict", s.predict).Methods("POST")
	router.HandleFunc("/inout", s.inOut).Methods("POST")
	router.HandleFunc("/process_video", s.rotation).Methods("POST")
	router.HandleFunc("/analyze_video", s.squat).Methods("POST")
	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("stub endpoints listening", zap.String("addr", server.Addr), zap.String("profile", *profile))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("stub server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// readFile возвращает генератор, засеянный содержимым файла
func (s *stubServer) readFile(w http.ResponseWriter, r *http.Request) (*rand.Rand, string, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "No file part")
		return nil, "", false
	}
	defer file.Close()

	h := fnv.New64a()
	if _, err := io.Copy(h, file); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "Failed to read file")
		return nil, "", false
	}
	return rand.New(rand.NewSource(int64(h.Sum64()))), header.Filename, true
}

func (s *stubServer) predict(w http.ResponseWriter, r *http.Request) {
	rng, filename, ok := s.readFile(w, r)
	if !ok {
		return
	}

	candidates := labels[s.profile]
	label := candidates[rng.Intn(len(candidates))]
	confidence := 0.4 + rng.Float64()*0.6

	probs := make(map[string]float64, len(candidates))
	rest := (1 - confidence) / float64(len(candidates)-1)
	for _, candidate := range candidates {
		probs[candidate] = rest
	}
	probs[label] = confidence

	s.logger.Info("predict", zap.String("file", filename), zap.String("label", label), zap.Float64("confidence", confidence))

	if s.profile == models.ProfileExercise {
		httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"exercise":   label,
			"confidence": confidence,
		})
		return
	}

	response := map[string]interface{}{
		"class":      label,
		"confidence": confidence,
		"all_probs":  probs,
	}
	if label == feedback.InvalidUmpireLabel {
		response["reason"] = "no umpire detected"
	}
	httpx.RespondJSON(w, http.StatusOK, response)
}

func strengthFor(rng *rand.Rand) string {
	return []string{"Low", "Medium", "High"}[rng.Intn(3)]
}

func (s *stubServer) inOut(w http.ResponseWriter, r *http.Request) {
	rng, filename, ok := s.readFile(w, r)
	if !ok {
		return
	}
	duration := 5 + rng.Float64()*10
	count := rng.Intn(20)

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"duration":         duration,
		"exercise":         "InOut Ladder Drill",
		"motorskill":       "Coordination",
		"count":            count,
		"normalized_count": count * 10 / int(duration),
		"speed_per_sec":    float64(count) / duration,
		"efficiency":       "Good",
		"strength":         strengthFor(rng),
		"file":             filename,
	})
}

func (s *stubServer) rotation(w http.ResponseWriter, r *http.Request) {
	rng, filename, ok := s.readFile(w, r)
	if !ok {
		return
	}
	duration := 5 + rng.Float64()*10
	strength := strengthFor(rng)

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"duration":   duration,
		"exercise":   "Balance",
		"motorskill": strength,
		"file":       filename,
		"count":      rng.Intn(8),
		"strength":   strength,
		"timer":      duration,
	})
}

func (s *stubServer) squat(w http.ResponseWriter, r *http.Request) {
	rng, filename, ok := s.readFile(w, r)
	if !ok {
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"motorskill": "Squats",
		"exercise":   "Power",
		"count":      rng.Intn(15),
		"strength":   strengthFor(rng),
		"duration":   5 + rng.Float64()*10,
		"file":       filename,
	})
}
