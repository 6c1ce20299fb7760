package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/Krimson/sportscan/pkg/models"
)

// Store - хранилище принятых медиафайлов
type Store interface {
	// Save сохраняет файл и возвращает imagePath вида /uploads/<uuid><ext>
	Save(ctx context.Context, upload *Upload) (string, error)
	Exists(ctx context.Context, mediaPath string) (bool, error)
	Open(ctx context.Context, mediaPath string) (io.ReadSeekCloser, error)
	Delete(ctx context.Context, mediaPath string) error
	Ping(ctx context.Context) error
}

// objectName генерирует уникальное имя, сохраняя расширение
func objectName(upload *Upload) string {
	return uuid.New().String() + upload.Ext
}

// pathNamer связывает публичный путь и имя объекта
type pathNamer struct {
	prefix string
}

func newPathNamer(prefix string) pathNamer {
	if prefix == "" {
		prefix = "/uploads/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return pathNamer{prefix: prefix}
}

func (n pathNamer) path(name string) string {
	return n.prefix + name
}

// name извлекает имя объекта из публичного пути, отвергая вложенные пути
func (n pathNamer) name(mediaPath string) (string, error) {
	if !strings.HasPrefix(mediaPath, n.prefix) {
		return "", fmt.Errorf("%w: media path %q is outside %s", models.ErrValidation, mediaPath, n.prefix)
	}
	name := strings.TrimPrefix(mediaPath, n.prefix)
	if name == "" || name != path.Base(name) || name == ".." || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: invalid media path %q", models.ErrValidation, mediaPath)
	}
	return name, nil
}
