package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Krimson/sportscan/internal/media"
	"github.com/Krimson/sportscan/pkg/models"
)

// Classifier - конвейер классификации
type Classifier interface {
	Classify(ctx context.Context, upload *media.Upload, mediaPath string) (*models.AnalysisResult, error)
}

type Presenter interface {
	Present(result *models.AnalysisResult) models.Presentation
}

// RecordStore сохраняет запись в историю и сообщает, какие файлы в ней используются
type RecordStore interface {
	Create(ctx context.Context, req *models.NewRecord) (*models.SignalRecord, error)
	Referenced(ctx context.Context, imagePath string) (bool, error)
}

type Publisher interface {
	Publish(event models.Event)
}

// Service - обработчик действий classify/save/clear для клиентской сессии
type Service struct {
	classifier Classifier
	media      media.Store
	presenter  Presenter
	slots      SlotStore
	records    RecordStore
	publisher  Publisher
	guard      *Guard
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(classifier Classifier, store media.Store, presenter Presenter, slots SlotStore,
	records RecordStore, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		classifier: classifier,
		media:      store,
		presenter:  presenter,
		slots:      slots,
		records:    records,
		publisher:  publisher,
		guard:      NewGuard(),
		now:        time.Now,
		logger:     logger,
	}
}

// Analyze сохраняет медиа, классифицирует его и перезаписывает текущий слот сессии
func (s *Service) Analyze(ctx context.Context, sessionID string, upload *media.Upload) (*models.AnalysisSession, error) {
	release, err := s.guard.Acquire(sessionID, "classify")
	if err != nil {
		return nil, err
	}
	defer release()

	mediaPath, err := s.media.Save(ctx, upload)
	if err != nil {
		return nil, err
	}

	result, err := s.classifier.Classify(ctx, upload, mediaPath)
	if err != nil {
		if delErr := s.media.Delete(ctx, mediaPath); delErr != nil {
			s.logger.Warn("failed to remove media of failed analysis",
				zap.String("path", mediaPath), zap.Error(delErr))
		}
		s.logger.Error("classification failed",
			zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	previous, err := s.slots.Get(ctx, sessionID)
	if err != nil {
		previous = nil
	}

	session := &models.AnalysisSession{
		SessionID:    sessionID,
		Result:       *result,
		Presentation: s.presenter.Present(result),
		UpdatedAt:    s.now().UTC(),
	}

	if err := s.slots.Set(ctx, session); err != nil {
		// результат возвращается клиенту даже без слота
		s.logger.Warn("failed to store current result",
			zap.String("session_id", sessionID), zap.Error(err))
	} else if previous != nil {
		s.discardMedia(ctx, previous, mediaPath)
	}

	s.logger.Info("analysis completed",
		zap.String("session_id", sessionID),
		zap.String("label", result.Label),
		zap.Float64("confidence", result.Confidence),
		zap.String("endpoint", result.Endpoint),
		zap.Bool("invalid", result.Invalid),
	)
	s.publish(models.EventAnalysisCompleted, sessionID, session)

	return session, nil
}

// Current возвращает текущий результат сессии
func (s *Service) Current(ctx context.Context, sessionID string) (*models.AnalysisSession, error) {
	return s.slots.Get(ctx, sessionID)
}

// Clear сбрасывает текущий результат сессии
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	release, err := s.guard.Acquire(sessionID, "clear")
	if err != nil {
		return err
	}
	defer release()

	session, err := s.slots.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.slots.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.discardMedia(ctx, session, "")
	return nil
}

// discardMedia удаляет файл замененного или сброшенного результата, если он не сохранен в историю
func (s *Service) discardMedia(ctx context.Context, session *models.AnalysisSession, keep string) {
	mediaPath := session.Result.MediaPath
	if mediaPath == "" || mediaPath == keep {
		return
	}

	referenced, err := s.records.Referenced(ctx, mediaPath)
	if err != nil {
		s.logger.Warn("failed to check media references, keeping file",
			zap.String("path", mediaPath), zap.Error(err))
		return
	}
	if referenced {
		return
	}

	if err := s.media.Delete(ctx, mediaPath); err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("failed to remove discarded media",
			zap.String("path", mediaPath), zap.Error(err))
	}
}

// SaveCurrent сохраняет текущий результат сессии в историю. Слот не изменяется
func (s *Service) SaveCurrent(ctx context.Context, sessionID string) (*models.SignalRecord, error) {
	release, err := s.guard.Acquire(sessionID, "save")
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.slots.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := session.Result
	if result.Invalid {
		return nil, fmt.Errorf("%w: %s results cannot be saved", models.ErrValidation, result.Label)
	}

	accuracy := result.Confidence
	record, err := s.records.Create(ctx, &models.NewRecord{
		ImagePath:   result.MediaPath,
		SignalType:  result.Label,
		Accuracy:    &accuracy,
		Meaning:     result.Meaning,
		Suggestions: result.Suggestions,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session result saved",
		zap.String("session_id", sessionID),
		zap.String("record_id", record.ID),
	)
	return record, nil
}

// Stats возвращает сведения для /debug/stats
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"in_flight": s.guard.InFlight(),
		"slots":     s.slots.Stats(ctx),
	}
}

func (s *Service) publish(eventType, sessionID string, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(models.Event{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: s.now().UTC(),
	})
}
