package model

import "time"

// LogEntry is an append-only audit record.
type LogEntry struct {
	ID        int64
	EventType string
	UserID    *int64
	Message   string
	CreatedAt time.Time
}

// Audit outcome suffixes appended to the action name.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// EventType joins action and outcome into audit event type.
func EventType(action Action, outcome string) string {
	return string(action) + "." + outcome
}
