package models

import "time"

// Analysis status values returned by the AI endpoint.
const (
	StatusNormal  = "NORMAL"
	StatusWarning = "WARNING"
	StatusDanger  = "DANGER"
)

// AnalysisResult holds the structured fields extracted from an AI response.
type AnalysisResult struct {
	Status      string  `json:"status"`
	Confidence  float64 `json:"confidence"`
	ThreatLevel int     `json:"threat_level"`
	Summary     string  `json:"summary"`
	Analysis    string  `json:"analysis"`
	Action      string  `json:"action"`
}

// Record is one persisted monitoring cycle result. Records are append-only:
// once saved they are never mutated.
type Record struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	SessionID      string    `json:"session_id"`
	BaselinePath   string    `json:"baseline_path"`
	CurrentPath    string    `json:"current_path"`
	VideoPath      string    `json:"video_path,omitempty"`
	MonitoringType string    `json:"monitoring_type"`
	PromptStyle    string    `json:"prompt_style"`
	CustomContext  string    `json:"custom_context,omitempty"`
	PromptUsed     string    `json:"prompt_used"`
	AIResponse     string    `json:"ai_response"`
	Status         string    `json:"status"`
	Confidence     float64   `json:"confidence"`
	ThreatLevel    int       `json:"threat_level"`
	Summary        string    `json:"summary"`
	Keywords       string    `json:"keywords"`
	HasVideo       bool      `json:"has_video"`
	CreatedAt      time.Time `json:"created_at"`
}
