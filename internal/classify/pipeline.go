package classify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Krimson/sportscan/internal/feedback"
	"github.com/Krimson/sportscan/internal/media"
	"github.com/Krimson/sportscan/pkg/models"
)

// Predictor - вызовы внешних ML сервисов
type Predictor interface {
	Predict(ctx context.Context, url string, upload *media.Upload) (*models.StageOneResult, error)
	Analyze(ctx context.Context, endpoint, url, label string, upload *media.Upload) (*models.StageTwoResult, error)
}

// Pipeline выполняет stage one -> routing -> stage two -> feedback
type Pipeline struct {
	predictor   Predictor
	router      *Router
	stageOneURL string
	endpoints   map[string]string
	synth       *feedback.Synthesizer
	logger      *zap.Logger
}

// NewPipeline проверяет, что у всех маршрутов есть URL
func NewPipeline(predictor Predictor, router *Router, stageOneURL string, endpoints map[string]string,
	synth *feedback.Synthesizer, logger *zap.Logger) (*Pipeline, error) {
	if err := router.Validate(endpoints); err != nil {
		return nil, err
	}
	return &Pipeline{
		predictor:   predictor,
		router:      router,
		stageOneURL: stageOneURL,
		endpoints:   endpoints,
		synth:       synth,
		logger:      logger,
	}, nil
}

// Classify выполняет полный цикл. Ошибка stage one прерывает цикл, ошибка stage two
// превращается в warning
func (p *Pipeline) Classify(ctx context.Context, upload *media.Upload, mediaPath string) (*models.AnalysisResult, error) {
	stageOne, err := p.predictor.Predict(ctx, p.stageOneURL, upload)
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		Label:      stageOne.Label,
		Confidence: stageOne.Confidence,
		MediaPath:  mediaPath,
		MediaKind:  upload.Kind,
		StageOne:   *stageOne,
	}

	if p.synth.IsInvalid(stageOne.Label) {
		fb := p.synth.SynthesizeInvalid(stageOne.Reason)
		result.Label = fb.Label
		result.Meaning = fb.Meaning
		result.Suggestions = fb.Suggestions
		result.Invalid = true
		return result, nil
	}

	if endpoint, ok := p.router.Route(stageOne.Label); ok {
		result.Endpoint = endpoint
		stageTwo, err := p.predictor.Analyze(ctx, endpoint, p.endpoints[endpoint], stageOne.Label, upload)
		if err != nil {
			p.logger.Warn("stage two failed, keeping stage one result",
				zap.String("endpoint", endpoint),
				zap.String("label", stageOne.Label),
				zap.Error(err),
			)
			result.Warning = fmt.Sprintf("detailed analysis unavailable: %v", err)
		} else {
			result.StageTwo = stageTwo
		}
	}

	fb := p.synth.Synthesize(stageOne.Label, stageOne.Confidence)
	result.Meaning = fb.Meaning
	result.Suggestions = fb.Suggestions

	return result, nil
}
