package repository

import (
	"context"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

// AuditRepository appends audit log entries.
type AuditRepository interface {
	Append(ctx context.Context, entry model.LogEntry) error
	ListRecent(ctx context.Context, limit int) ([]model.LogEntry, error)
}
