package classify

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Krimson/sportscan/pkg/models"
)

// ConfidenceUnit - единица confidence в ответе первичного классификатора
type ConfidenceUnit string

const (
	UnitAuto     ConfidenceUnit = "auto"
	UnitFraction ConfidenceUnit = "fraction"
	UnitPercent  ConfidenceUnit = "percent"
)

// NormalizeConfidence переводит значение в проценты.
// auto: [0,1] - доля, (1,100] - проценты, остальное - ошибка
func NormalizeConfidence(value float64, unit ConfidenceUnit) (float64, error) {
	scale, err := confidenceScale(value, unit)
	if err != nil {
		return 0, err
	}
	return value * scale, nil
}

// confidenceScale возвращает множитель до процентов: 100 для доли, 1 для процентов
func confidenceScale(value float64, unit ConfidenceUnit) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, fmt.Errorf("%w: confidence %v is out of range", models.ErrMalformedResponse, value)
	}

	switch unit {
	case UnitFraction:
		if value > 1 {
			return 0, fmt.Errorf("%w: confidence %v is not a fraction", models.ErrMalformedResponse, value)
		}
		return 100, nil
	case UnitPercent:
		if value > 100 {
			return 0, fmt.Errorf("%w: confidence %v exceeds 100", models.ErrMalformedResponse, value)
		}
		return 1, nil
	default:
		if value <= 1 {
			return 100, nil
		}
		if value <= 100 {
			return 1, nil
		}
		return 0, fmt.Errorf("%w: confidence %v exceeds 100", models.ErrMalformedResponse, value)
	}
}

type stageOnePayload struct {
	Class      *string            `json:"class"`
	Exercise   *string            `json:"exercise"`
	Confidence *float64           `json:"confidence"`
	Reason     string             `json:"reason"`
	AllProbs   map[string]float64 `json:"all_probs"`
}

// parseStageOne разбирает ответ /predict. Ключ class приоритетнее exercise
func parseStageOne(body []byte, unit ConfidenceUnit) (*models.StageOneResult, error) {
	var payload stageOnePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}

	var label string
	switch {
	case payload.Class != nil && *payload.Class != "":
		label = *payload.Class
	case payload.Exercise != nil && *payload.Exercise != "":
		label = *payload.Exercise
	default:
		return nil, fmt.Errorf("%w: label is missing", models.ErrMalformedResponse)
	}

	if payload.Confidence == nil {
		return nil, fmt.Errorf("%w: confidence is missing", models.ErrMalformedResponse)
	}
	scale, err := confidenceScale(*payload.Confidence, unit)
	if err != nil {
		return nil, err
	}

	result := &models.StageOneResult{
		Label:      label,
		Confidence: *payload.Confidence * scale,
		Reason:     payload.Reason,
	}

	// вероятности классов приводятся тем же множителем, что и confidence
	if len(payload.AllProbs) > 0 {
		result.AllProbs = make(map[string]float64, len(payload.AllProbs))
		for class, p := range payload.AllProbs {
			result.AllProbs[class] = p * scale
		}
	}

	return result, nil
}

var stageTwoKnownKeys = map[string]bool{
	"label":      true,
	"exercise":   true,
	"motorskill": true,
	"count":      true,
	"duration":   true,
	"strength":   true,
}

// parseStageTwo разбирает ответ специализированного анализатора
func parseStageTwo(endpoint string, body []byte) (*models.StageTwoResult, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}

	result := &models.StageTwoResult{Endpoint: endpoint}

	if label, ok := payload["label"].(string); ok && label != "" {
		result.Label = label
	} else if label, ok := payload["exercise"].(string); ok && label != "" {
		result.Label = label
	} else {
		return nil, fmt.Errorf("%w: stage two label is missing", models.ErrMalformedResponse)
	}

	if skill, ok := payload["motorskill"].(string); ok {
		result.MotorSkill = skill
	}
	if strength, ok := payload["strength"].(string); ok {
		result.Strength = strength
	}
	if count, ok := payload["count"].(float64); ok {
		if count < 0 || count > math.MaxInt32 || count != math.Trunc(count) {
			return nil, fmt.Errorf("%w: stage two count %v is not a non-negative integer", models.ErrMalformedResponse, count)
		}
		n := int(count)
		result.Count = &n
	}
	if duration, ok := payload["duration"].(float64); ok {
		result.Duration = &duration
	}

	for key, value := range payload {
		if stageTwoKnownKeys[key] {
			continue
		}
		if result.Extra == nil {
			result.Extra = make(map[string]interface{})
		}
		result.Extra[key] = value
	}

	return result, nil
}
