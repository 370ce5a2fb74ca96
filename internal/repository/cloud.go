// Cloud repositories mirror the local collections into Postgres. They are
// the target of the one-shot migration and of the audit sink; upserts keep
// every write idempotent.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/jmoiron/sqlx"

	"atelier/internal/entities"
)

type CloudEventsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewCloudEventsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *CloudEventsRepo {
	return &CloudEventsRepo{db: db, getter: getter}
}

func (r *CloudEventsRepo) Upsert(ctx context.Context, ev entities.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, `
		INSERT INTO events (id, status, scheduled_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    scheduled_at = EXCLUDED.scheduled_at,
		    payload = EXCLUDED.payload
	`, ev.ID, ev.Status, ev.Date, payload)
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", ev.ID, err)
	}
	return nil
}

func (r *CloudEventsRepo) List(ctx context.Context) ([]entities.Event, error) {
	rows, err := r.getter.DefaultTrOrDB(ctx, r.db).QueryContext(ctx, `SELECT payload FROM events ORDER BY scheduled_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []entities.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var ev entities.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event payload: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *CloudEventsRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	return count, err
}

type CloudClientsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewCloudClientsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *CloudClientsRepo {
	return &CloudClientsRepo{db: db, getter: getter}
}

func (r *CloudClientsRepo) Upsert(ctx context.Context, c entities.Client) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal client: %w", err)
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, `
		INSERT INTO clients (id, email, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    payload = EXCLUDED.payload
	`, c.ID, c.Email, payload)
	if err != nil {
		return fmt.Errorf("failed to upsert client %s: %w", c.ID, err)
	}
	return nil
}

func (r *CloudClientsRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&count)
	return count, err
}

type CloudFloristsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewCloudFloristsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *CloudFloristsRepo {
	return &CloudFloristsRepo{db: db, getter: getter}
}

func (r *CloudFloristsRepo) Upsert(ctx context.Context, f entities.Florist) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal florist: %w", err)
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, `
		INSERT INTO florists (id, payload)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload
	`, f.ID, payload)
	if err != nil {
		return fmt.Errorf("failed to upsert florist %s: %w", f.ID, err)
	}
	return nil
}

func (r *CloudFloristsRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM florists`).Scan(&count)
	return count, err
}
