package dto

import "time"

// LogEntryResponse describes an audit record.
type LogEntryResponse struct {
	ID        int64     `json:"id"`
	EventType string    `json:"event_type"`
	UserID    *int64    `json:"user_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// HealthResponse reports service readiness.
type HealthResponse struct {
	Status string `json:"status"`
}
