package client

import "time"

// MessageRequest is the body for POST /message.
type MessageRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// MessageReply is the daemon's answer when the pipeline or a
// collaborator produced a response.
type MessageReply struct {
	Response string `json:"response"`
	Source   string `json:"source"` // plugin, cache, responder
}

// HealthResult mirrors one entry of the daemon's health snapshot.
type HealthResult struct {
	Status    string `json:"status"`
	LatencyMS *int64 `json:"latency_ms,omitempty"`
	Code      *int   `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Event mirrors one replayed audit record.
type Event struct {
	Type      string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}
