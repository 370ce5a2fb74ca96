package entities

import (
	"time"

	"github.com/google/uuid"
)

// EventStatusChanged_v1 is published when the reconciliation step writes a
// derived status back to the store, and when a billing operation or a manual
// cancel changes the stored status.
type EventStatusChanged_v1 struct {
	Header EventHeader `json:"header"`

	EventID   string    `json:"event_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

type EventInvoiced_v1 struct {
	Header EventHeader `json:"header"`

	EventID    string    `json:"event_id"`
	ClientID   string    `json:"client_id"`
	Budget     float64   `json:"budget"`
	InvoicedAt time.Time `json:"invoiced_at"`
}

type EventPaid_v1 struct {
	Header EventHeader `json:"header"`

	EventID       string    `json:"event_id"`
	ClientID      string    `json:"client_id"`
	Budget        float64   `json:"budget"`
	PaymentMethod string    `json:"payment_method"`
	PaidAt        time.Time `json:"paid_at"`
}

// PaymentNoteAdded_v1 records the overdue/reminder audit-trail affordance.
// It never implies a status change.
type PaymentNoteAdded_v1 struct {
	Header EventHeader `json:"header"`

	EventID string    `json:"event_id"`
	Kind    string    `json:"kind"`
	Note    string    `json:"note"`
	AddedAt time.Time `json:"added_at"`
}

// PaymentOverdue_v1 is published by the periodic overdue sweep for every
// event invoiced longer than the configured threshold without payment.
type PaymentOverdue_v1 struct {
	Header EventHeader `json:"header"`

	EventID     string    `json:"event_id"`
	InvoicedAt  time.Time `json:"invoiced_at"`
	OverdueDays int       `json:"overdue_days"`
}

// StoreMigrated_v1 is published after a successful local-to-cloud bulk copy.
type StoreMigrated_v1 struct {
	Header EventHeader `json:"header"`

	Events     int       `json:"events"`
	Clients    int       `json:"clients"`
	Florists   int       `json:"florists"`
	MigratedAt time.Time `json:"migrated_at"`
}

// AuditEvent is the persisted form of a published domain event.
type AuditEvent struct {
	Id          uuid.UUID `db:"event_id"`
	PublishedAt time.Time `db:"published_at"`
	EventName   string    `db:"event_name"`
	Payload     []byte    `db:"event_payload"`
}
