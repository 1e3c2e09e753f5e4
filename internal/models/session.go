package models

import "time"

// MonitoringState is a point-in-time snapshot of the session controller.
type MonitoringState struct {
	Active       bool   `json:"active"`
	SessionID    string `json:"session_id,omitempty"`
	BaselinePath string `json:"baseline_path,omitempty"`
}

// SessionRequest is the payload for starting a monitoring session.
type SessionRequest struct {
	Interval       int    `json:"interval"`
	MonitoringType string `json:"type"`
	PromptStyle    string `json:"style"`
	CustomContext  string `json:"context"`
}

// Frame is a single raw video frame pulled from the camera stream.
// Data is packed BGR24, one byte triplet per pixel.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Timestamp time.Time
}
