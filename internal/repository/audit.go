package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AuditRepo appends every published domain event to Postgres. Insert-or-skip
// keeps redelivered messages from duplicating the trail.
type AuditRepo struct {
	db *sqlx.DB
}

func NewAuditRepo(db *sqlx.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) SaveEvent(
	ctx context.Context,
	id uuid.UUID,
	publishedAt time.Time,
	eventName string,
	payload []byte,
) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events (event_id, published_at, event_name, event_payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, id, publishedAt, eventName, payload)
	return err
}
