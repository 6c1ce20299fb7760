package record

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Krimson/sportscan/pkg/models"
)

// Manager управляет жизненным циклом записей (Application Layer)
type Manager struct {
	repo        Repository
	media       MediaChecker
	publisher   Publisher
	signalTypes map[string]bool
	now         func() time.Time
	logger      *zap.Logger
}

// NewManager создает менеджер. signalTypes == nil разрешает любой непустой signalType
func NewManager(repo Repository, media MediaChecker, publisher Publisher, signalTypes []string, logger *zap.Logger) *Manager {
	m := &Manager{
		repo:      repo,
		media:     media,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
	if signalTypes != nil {
		m.signalTypes = make(map[string]bool, len(signalTypes))
		for _, t := range signalTypes {
			m.signalTypes[t] = true
		}
	}
	return m
}

// SetClock подменяет источник времени
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Manager) validate(ctx context.Context, req *models.NewRecord) error {
	var missing []string
	if strings.TrimSpace(req.ImagePath) == "" {
		missing = append(missing, "imagePath")
	}
	if strings.TrimSpace(req.SignalType) == "" {
		missing = append(missing, "signalType")
	}
	if req.Accuracy == nil {
		missing = append(missing, "accuracy")
	}
	if strings.TrimSpace(req.Meaning) == "" {
		missing = append(missing, "meaning")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", models.ErrValidation, strings.Join(missing, ", "))
	}

	if m.signalTypes != nil && !m.signalTypes[req.SignalType] {
		return fmt.Errorf("%w: signalType %q is not allowed", models.ErrValidation, req.SignalType)
	}

	accuracy := *req.Accuracy
	if math.IsNaN(accuracy) || accuracy < 0 || accuracy > 100 {
		return fmt.Errorf("%w: accuracy %v must be within [0, 100]", models.ErrValidation, accuracy)
	}

	if m.media != nil {
		exists, err := m.media.Exists(ctx, req.ImagePath)
		if err != nil {
			return fmt.Errorf("%w: failed to check media: %v", models.ErrStorageUnavailable, err)
		}
		if !exists {
			return fmt.Errorf("%w: imagePath %q does not exist", models.ErrValidation, req.ImagePath)
		}
	}

	return nil
}

// Create валидирует и сохраняет новую запись
func (m *Manager) Create(ctx context.Context, req *models.NewRecord) (*models.SignalRecord, error) {
	if err := m.validate(ctx, req); err != nil {
		return nil, err
	}

	record := &models.SignalRecord{
		ID:          uuid.New().String(),
		ImagePath:   req.ImagePath,
		SignalType:  req.SignalType,
		Accuracy:    *req.Accuracy,
		Meaning:     req.Meaning,
		Suggestions: req.Suggestions,
		CreatedAt:   m.now().UTC(),
	}

	if err := m.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	m.logger.Info("record created",
		zap.String("id", record.ID),
		zap.String("signal_type", record.SignalType),
		zap.Float64("accuracy", record.Accuracy),
	)
	m.publish(models.EventRecordCreated, record)

	return record, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*models.SignalRecord, error) {
	return m.repo.Get(ctx, id)
}

// List возвращает записи от новых к старым
func (m *Manager) List(ctx context.Context, limit, offset int) ([]*models.SignalRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return m.repo.List(ctx, limit, offset)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}

	m.logger.Info("record deleted", zap.String("id", id))
	m.publish(models.EventRecordDeleted, map[string]string{"id": id})
	return nil
}

// Referenced сообщает, ссылается ли хотя бы одна запись на файл
func (m *Manager) Referenced(ctx context.Context, imagePath string) (bool, error) {
	count, err := m.repo.CountByImagePath(ctx, imagePath)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Stats возвращает сведения для /debug/stats
func (m *Manager) Stats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{}
	count, err := m.repo.Count(ctx)
	if err != nil {
		stats["error"] = err.Error()
		return stats
	}
	stats["records"] = count
	return stats
}

func (m *Manager) publish(eventType string, data interface{}) {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(models.Event{
		Type:      eventType,
		Data:      data,
		Timestamp: m.now().UTC(),
	})
}
