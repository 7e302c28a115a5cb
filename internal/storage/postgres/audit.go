package postgres

import (
	"context"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

type auditRepository struct {
	db querier
}

func (r *auditRepository) Append(ctx context.Context, entry model.LogEntry) error {
	const query = `INSERT INTO log_entries (event_type, user_id, message, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, entry.EventType, entry.UserID, entry.Message, entry.CreatedAt)
	return err
}

func (r *auditRepository) ListRecent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	const query = `SELECT id, event_type, user_id, message, created_at
                   FROM log_entries ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		if err := rows.Scan(&e.ID, &e.EventType, &e.UserID, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
