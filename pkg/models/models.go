package models

import (
	"errors"
	"time"
)

// Profile определяет вариант развертывания: набор классов, правила и принимаемые форматы
type Profile string

const (
	ProfileUmpire   Profile = "umpire"
	ProfileExercise Profile = "exercise"
)

// Valid проверяет, что профиль известен
func (p Profile) Valid() bool {
	return p == ProfileUmpire || p == ProfileExercise
}

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// StageOneResult - ответ первичного классификатора, confidence уже в процентах
type StageOneResult struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Reason     string             `json:"reason,omitempty"`
	AllProbs   map[string]float64 `json:"all_probs,omitempty"`
}

// StageTwoResult - ответ специализированного анализатора
type StageTwoResult struct {
	Endpoint   string                 `json:"endpoint"`
	Label      string                 `json:"label"`
	MotorSkill string                 `json:"motorskill,omitempty"`
	Count      *int                   `json:"count,omitempty"`
	Duration   *float64               `json:"duration,omitempty"`
	Strength   string                 `json:"strength,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

type AnalysisResult struct {
	Label       string          `json:"label"`
	Confidence  float64         `json:"confidence"`
	Meaning     string          `json:"meaning"`
	Suggestions string          `json:"suggestions"`
	MediaPath   string          `json:"media_path"`
	MediaKind   MediaKind       `json:"media_kind"`
	Invalid     bool            `json:"invalid"`
	Endpoint    string          `json:"endpoint,omitempty"`
	Warning     string          `json:"warning,omitempty"`
	StageOne    StageOneResult  `json:"stage1"`
	StageTwo    *StageTwoResult `json:"stage2,omitempty"`
}

// Presentation - эталонные изображения для карточки результата
type Presentation struct {
	MediaURL     string   `json:"media_url"`
	Improvements []string `json:"improvements"`
	Faults       []string `json:"faults"`
}

// AnalysisSession - текущий результат клиентской сессии
type AnalysisSession struct {
	SessionID    string         `json:"session_id"`
	Result       AnalysisResult `json:"result"`
	Presentation Presentation   `json:"presentation"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type SignalRecord struct {
	ID          string    `json:"id"`
	ImagePath   string    `json:"imagePath"`
	SignalType  string    `json:"signalType"`
	Accuracy    float64   `json:"accuracy"`
	Meaning     string    `json:"meaning"`
	Suggestions string    `json:"suggestions"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewRecord - данные для создания записи. Accuracy == nil означает отсутствие поля
type NewRecord struct {
	ImagePath   string   `json:"imagePath"`
	SignalType  string   `json:"signalType"`
	Accuracy    *float64 `json:"accuracy"`
	Meaning     string   `json:"meaning"`
	Suggestions string   `json:"suggestions"`
}

// Event - уведомление для подключенных UI клиентов
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	EventAnalysisCompleted = "analysis.completed"
	EventRecordCreated     = "record.created"
	EventRecordDeleted     = "record.deleted"
)

// Ответы HTTP API
type AnalyzeResponse struct {
	SessionID    string         `json:"session_id"`
	Status       string         `json:"status"`
	Result       AnalysisResult `json:"result"`
	Presentation Presentation   `json:"presentation"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Ошибки
var (
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedResponse   = errors.New("malformed upstream response")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrNotFound            = errors.New("not found")
	ErrBusy                = errors.New("action already in progress")
)
