package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Krimson/sportscan/pkg/models"
)

// Поддерживаемые драйверы database/sql
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS signal_records (
		id TEXT PRIMARY KEY,
		image_path TEXT NOT NULL,
		signal_type TEXT NOT NULL,
		accuracy DOUBLE PRECISION NOT NULL,
		meaning TEXT NOT NULL,
		suggestions TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signal_records_created_at ON signal_records (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_signal_records_image_path ON signal_records (image_path)`,
}

// SQLRepository реализует Repository поверх PostgreSQL или SQLite (Infrastructure Layer)
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// NewSQLRepository открывает БД, проверяет соединение и создает таблицу
func NewSQLRepository(ctx context.Context, driver, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Настройки пула соединений
	if driver == DriverSQLite {
		// одно соединение: in-memory база живет в пределах соединения
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	repo := &SQLRepository{db: db, driver: driver}
	if err := repo.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLRepository) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Close закрывает соединение с БД
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *SQLRepository) Create(ctx context.Context, record *models.SignalRecord) error {
	query := `
		INSERT INTO signal_records (id, image_path, signal_type, accuracy, meaning, suggestions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.ImagePath,
		record.SignalType,
		record.Accuracy,
		record.Meaning,
		record.Suggestions,
		record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create record: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.SignalRecord, error) {
	query := `
		SELECT id, image_path, signal_type, accuracy, meaning, suggestions, created_at
		FROM signal_records
		WHERE id = $1
	`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: record %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to get record: %v", models.ErrStorageUnavailable, err)
	}
	return record, nil
}

func (r *SQLRepository) List(ctx context.Context, limit, offset int) ([]*models.SignalRecord, error) {
	query := `
		SELECT id, image_path, signal_type, accuracy, meaning, suggestions, created_at
		FROM signal_records
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list records: %v", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	records := make([]*models.SignalRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan record: %v", models.ErrStorageUnavailable, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}

	return records, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM signal_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete record: %v", models.ErrStorageUnavailable, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: record %s", models.ErrNotFound, id)
	}
	return nil
}

func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signal_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count records: %v", models.ErrStorageUnavailable, err)
	}
	return count, nil
}

func (r *SQLRepository) CountByImagePath(ctx context.Context, imagePath string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM signal_records WHERE image_path = $1`
	if err := r.db.QueryRowContext(ctx, query, imagePath).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count records by image: %v", models.ErrStorageUnavailable, err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.SignalRecord, error) {
	var record models.SignalRecord
	if err := row.Scan(
		&record.ID,
		&record.ImagePath,
		&record.SignalType,
		&record.Accuracy,
		&record.Meaning,
		&record.Suggestions,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}
