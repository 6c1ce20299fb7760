package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Krimson/sportscan/pkg/models"
)

const (
	DefaultImageMaxBytes int64 = 10 << 20
	DefaultVideoMaxBytes int64 = 200 << 20

	// FieldFile - имя multipart поля с файлом
	FieldFile = "file"

	formMemory   = 32 << 20
	formOverhead = 1 << 20
)

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

var videoTypes = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".avi": "video/x-msvideo",
	".mkv": "video/x-matroska",
}

// Upload - принятый файл, готовый к отправке классификатору
type Upload struct {
	Filename    string
	Ext         string
	Kind        models.MediaKind
	ContentType string
	Data        []byte
}

func (u *Upload) Size() int64 {
	return int64(len(u.Data))
}

// Policy - набор допустимых форматов и лимит размера для профиля
type Policy struct {
	Kind     models.MediaKind
	MaxBytes int64
	types    map[string]string
}

// PolicyFor возвращает политику приема для профиля. maxBytes <= 0 означает лимит по умолчанию
func PolicyFor(profile models.Profile, maxBytes int64) Policy {
	if profile == models.ProfileExercise {
		if maxBytes <= 0 {
			maxBytes = DefaultVideoMaxBytes
		}
		return Policy{Kind: models.MediaKindVideo, MaxBytes: maxBytes, types: videoTypes}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultImageMaxBytes
	}
	return Policy{Kind: models.MediaKindImage, MaxBytes: maxBytes, types: imageTypes}
}

// Extensions возвращает допустимые расширения
func (p Policy) Extensions() []string {
	exts := make([]string, 0, len(p.types))
	for ext := range p.types {
		exts = append(exts, ext)
	}
	return exts
}

func (p Policy) acceptsMIME(mt *mimetype.MIME) (string, bool) {
	for _, accepted := range p.types {
		if mt.Is(accepted) {
			return accepted, true
		}
	}
	return "", false
}

// Check проверяет имя файла, размер и фактический тип содержимого
func (p Policy) Check(filename string, data []byte) (*Upload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", models.ErrValidation)
	}
	if int64(len(data)) > p.MaxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", models.ErrValidation, p.MaxBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := p.types[ext]; !ok {
		return nil, fmt.Errorf("%w: extension %q is not accepted for %s uploads", models.ErrValidation, ext, p.Kind)
	}

	detected := mimetype.Detect(data)
	contentType, ok := p.acceptsMIME(detected)
	if !ok {
		return nil, fmt.Errorf("%w: content type %s is not accepted for %s uploads", models.ErrValidation, detected.String(), p.Kind)
	}

	return &Upload{
		Filename:    filepath.Base(filename),
		Ext:         ext,
		Kind:        p.Kind,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// ParseForm ограничивает тело запроса и разбирает multipart форму
func (p Policy) ParseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, p.MaxBytes+formOverhead)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: file exceeds %d bytes", models.ErrValidation, p.MaxBytes)
		}
		return fmt.Errorf("%w: invalid multipart form: %v", models.ErrValidation, err)
	}
	return nil
}

// HasFile сообщает, есть ли в разобранной форме файлы
func HasFile(r *http.Request) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File[FieldFile]) > 0
}

// FileFromForm извлекает ровно один файл из разобранной формы
func (p Policy) FileFromForm(r *http.Request) (*Upload, error) {
	if r.MultipartForm == nil {
		return nil, fmt.Errorf("%w: multipart form is required", models.ErrValidation)
	}

	files := r.MultipartForm.File[FieldFile]
	switch {
	case len(files) == 0:
		return nil, fmt.Errorf("%w: field %q is required", models.ErrValidation, FieldFile)
	case len(files) > 1:
		return nil, fmt.Errorf("%w: exactly one file is accepted, got %d", models.ErrValidation, len(files))
	}

	header := files[0]
	if header.Size > p.MaxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", models.ErrValidation, p.MaxBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open upload: %v", models.ErrValidation, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, p.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read upload: %v", models.ErrValidation, err)
	}

	return p.Check(header.Filename, data)
}

// FromRequest разбирает форму и возвращает единственный принятый файл
func (p Policy) FromRequest(w http.ResponseWriter, r *http.Request) (*Upload, error) {
	if err := p.ParseForm(w, r); err != nil {
		return nil, err
	}
	return p.FileFromForm(r)
}
