package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Krimson/sportscan/pkg/models"
)

// LocalStore хранит файлы в каталоге на диске
type LocalStore struct {
	dir    string
	namer  pathNamer
	logger *zap.Logger
}

// NewLocalStore создает каталог при необходимости
func NewLocalStore(dir, urlPrefix string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir %s: %w", dir, err)
	}
	return &LocalStore{
		dir:    dir,
		namer:  newPathNamer(urlPrefix),
		logger: logger,
	}, nil
}

func (s *LocalStore) Save(ctx context.Context, upload *Upload) (string, error) {
	name := objectName(upload)
	if err := os.WriteFile(filepath.Join(s.dir, name), upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("%w: failed to write media: %v", models.ErrStorageUnavailable, err)
	}

	s.logger.Debug("media saved",
		zap.String("name", name),
		zap.Int64("size", upload.Size()),
	)
	return s.namer.path(name), nil
}

func (s *LocalStore) Exists(ctx context.Context, mediaPath string) (bool, error) {
	name, err := s.namer.name(mediaPath)
	if err != nil {
		return false, nil
	}
	info, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to stat media: %v", models.ErrStorageUnavailable, err)
	}
	return !info.IsDir(), nil
}

func (s *LocalStore) Open(ctx context.Context, mediaPath string) (io.ReadSeekCloser, error) {
	name, err := s.namer.name(mediaPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: media %s", models.ErrNotFound, mediaPath)
		}
		return nil, fmt.Errorf("%w: failed to open media: %v", models.ErrStorageUnavailable, err)
	}
	return f, nil
}

func (s *LocalStore) Delete(ctx context.Context, mediaPath string) error {
	name, err := s.namer.name(mediaPath)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: media %s", models.ErrNotFound, mediaPath)
		}
		return fmt.Errorf("%w: failed to delete media: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *LocalStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", models.ErrStorageUnavailable, s.dir)
	}
	return nil
}
