package record

import (
	"context"

	"github.com/Krimson/sportscan/pkg/models"
)

// Repository определяет интерфейс хранилища записей (Domain Layer).
// Обновления записей не предусмотрены
type Repository interface {
	Create(ctx context.Context, record *models.SignalRecord) error
	Get(ctx context.Context, id string) (*models.SignalRecord, error)
	// List возвращает записи от новых к старым
	List(ctx context.Context, limit, offset int) ([]*models.SignalRecord, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	// CountByImagePath возвращает число записей, ссылающихся на файл
	CountByImagePath(ctx context.Context, imagePath string) (int, error)
	Ping(ctx context.Context) error
	Close() error
}
