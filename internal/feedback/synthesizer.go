package feedback

import (
	"fmt"
	"strings"
)

type Tier string

const (
	TierExcellent Tier = "excellent"
	TierVeryHigh  Tier = "very high"
	TierHigh      Tier = "high"
	TierModerate  Tier = "moderate"
	TierLow       Tier = "low"
)

// TierFor определяет уровень по уверенности в процентах. Нижняя граница включается
func TierFor(percent float64) Tier {
	switch {
	case percent >= 90:
		return TierExcellent
	case percent >= 80:
		return TierVeryHigh
	case percent >= 70:
		return TierHigh
	case percent >= 50:
		return TierModerate
	default:
		return TierLow
	}
}

// Feedback - производные тексты для результата
type Feedback struct {
	Label       string `json:"label"`
	Meaning     string `json:"meaning"`
	Suggestions string `json:"suggestions"`
	Tier        Tier   `json:"tier,omitempty"`
	Invalid     bool   `json:"invalid"`
}

// Synthesizer - чистая функция от (label, confidence) к текстам профиля
type Synthesizer struct {
	rules Rules
}

func NewSynthesizer(rules Rules) *Synthesizer {
	return &Synthesizer{rules: rules}
}

// IsInvalid сообщает, что метка означает отсутствие распознанного действия
func (s *Synthesizer) IsInvalid(label string) bool {
	return s.rules.InvalidLabel != "" && label == s.rules.InvalidLabel
}

// Meaning возвращает описание метки или "{label} signal"
func (s *Synthesizer) Meaning(label string) string {
	if meaning, ok := s.rules.Meanings[label]; ok {
		return meaning
	}
	return label + " signal"
}

// Synthesize строит meaning и suggestions для распознанной метки
func (s *Synthesizer) Synthesize(label string, confidencePercent float64) Feedback {
	tier := TierFor(confidencePercent)

	var b strings.Builder
	fmt.Fprintf(&b, "Detection confidence is %s (%.2f). %s is %s. %s",
		tier, confidencePercent/100, s.rules.Subject, label, s.rules.TierSentences[tier])

	if confidencePercent < s.rules.CorrectionBelow {
		if paragraph, ok := s.rules.Corrections[label]; ok {
			b.WriteString("\n\n")
			b.WriteString(paragraph)
		}
	}
	s.writeReference(&b)

	return Feedback{
		Label:       label,
		Meaning:     s.Meaning(label),
		Suggestions: b.String(),
		Tier:        tier,
	}
}

// SynthesizeInvalid строит ответ для снимка без распознанного действия
func (s *Synthesizer) SynthesizeInvalid(reason string) Feedback {
	var b strings.Builder
	if reason != "" {
		b.WriteString(reason)
	} else {
		b.WriteString(s.rules.InvalidSuggestions)
	}
	s.writeReference(&b)

	return Feedback{
		Label:       s.rules.InvalidDisplay,
		Meaning:     s.rules.InvalidMeaning,
		Suggestions: b.String(),
		Invalid:     true,
	}
}

func (s *Synthesizer) writeReference(b *strings.Builder) {
	if s.rules.ReferenceURL == "" {
		return
	}
	b.WriteString("\n\nReference: ")
	b.WriteString(s.rules.ReferenceURL)
}
