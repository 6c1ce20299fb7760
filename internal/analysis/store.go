package analysis

import (
	"context"
	"fmt"

	"github.com/Krimson/sportscan/pkg/models"
)

// SlotStore хранит текущий результат каждой клиентской сессии.
// Set полностью перезаписывает слот
type SlotStore interface {
	Set(ctx context.Context, session *models.AnalysisSession) error
	Get(ctx context.Context, sessionID string) (*models.AnalysisSession, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
	Stats(ctx context.Context) map[string]interface{}
	Close() error
}

func slotKey(sessionID string) string {
	return fmt.Sprintf("analysis:%s:current", sessionID)
}
