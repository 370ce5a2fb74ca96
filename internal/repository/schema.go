package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func InitializeDBSchema(db *sqlx.DB) error {
	_, err := db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	status VARCHAR(32) NOT NULL,
	scheduled_at TIMESTAMP WITH TIME ZONE NOT NULL,
	payload JSONB NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	email VARCHAR(255) NOT NULL,
	payload JSONB NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create clients table: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS florists (
	id TEXT PRIMARY KEY,
	payload JSONB NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create florists table: %w", err)
	}

	_, err = db.ExecContext(context.Background(), `
CREATE TABLE IF NOT EXISTS audit_events (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMP WITH TIME ZONE NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	event_payload JSONB NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to create audit_events table: %w", err)
	}

	return nil
}
