package classify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Krimson/sportscan/internal/media"
	"github.com/Krimson/sportscan/pkg/models"
)

const maxResponseBytes = 4 << 20

// Client вызывает внешние ML сервисы по HTTP multipart
type Client struct {
	httpClient *http.Client
	unit       ConfidenceUnit
	logger     *zap.Logger
}

// NewClient создает клиента с таймаутом на каждый вызов и без повторов
func NewClient(timeout time.Duration, unit ConfidenceUnit, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		unit:       unit,
		logger:     logger,
	}
}

// Predict отправляет файл первичному классификатору
func (c *Client) Predict(ctx context.Context, url string, upload *media.Upload) (*models.StageOneResult, error) {
	start := time.Now()
	body, err := c.postMultipart(ctx, url, upload, nil)
	if err != nil {
		return nil, fmt.Errorf("stage one: %w", err)
	}

	result, err := parseStageOne(body, c.unit)
	if err != nil {
		return nil, fmt.Errorf("stage one: %w", err)
	}

	c.logger.Info("stage one classified",
		zap.String("label", result.Label),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// Analyze отправляет файл и метку специализированному анализатору
func (c *Client) Analyze(ctx context.Context, endpoint, url, label string, upload *media.Upload) (*models.StageTwoResult, error) {
	start := time.Now()
	body, err := c.postMultipart(ctx, url, upload, map[string]string{
		"label":    label,
		"exercise": label,
	})
	if err != nil {
		return nil, fmt.Errorf("stage two %s: %w", endpoint, err)
	}

	result, err := parseStageTwo(endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("stage two %s: %w", endpoint, err)
	}

	c.logger.Info("stage two analyzed",
		zap.String("endpoint", endpoint),
		zap.String("label", result.Label),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

func (c *Client) postMultipart(ctx context.Context, url string, upload *media.Upload, fields map[string]string) ([]byte, error) {
	payload := &bytes.Buffer{}
	mw := multipart.NewWriter(payload)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, media.FieldFile, upload.Filename))
	header.Set("Content-Type", upload.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %s: %v", models.ErrUpstreamUnavailable, url, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", models.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d: %s",
			models.ErrUpstreamUnavailable, url, resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	// не разрезаем многобайтовый символ
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
