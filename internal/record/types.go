package record

import (
	"context"

	"github.com/Krimson/sportscan/pkg/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// SignalTypesFor возвращает допустимые значения signalType.
// nil означает свободный текст
func SignalTypesFor(profile models.Profile) []string {
	if profile == models.ProfileUmpire {
		return []string{"start_restart", "direction_pass", "timeout"}
	}
	return nil
}

// MediaChecker проверяет, что imagePath существует в хранилище медиа
type MediaChecker interface {
	Exists(ctx context.Context, mediaPath string) (bool, error)
}

// Publisher доставляет события UI клиентам
type Publisher interface {
	Publish(event models.Event)
}

// SessionSaver сохраняет текущий результат сессии как запись
type SessionSaver interface {
	SaveCurrent(ctx context.Context, sessionID string) (*models.SignalRecord, error)
}
