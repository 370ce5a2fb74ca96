package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/rs/zerolog"

	"atelier/internal/entities"
)

// Handler bundles the event-side reactions to domain events.
type Handler struct {
	logger zerolog.Logger
}

func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{logger: logger.With().Str("component", "events").Logger()}
}

// StatusChangeLogger surfaces lifecycle transitions; this is the
// notification feed the dashboard widgets listen to.
func (h *Handler) StatusChangeLogger() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"status_change_logger",
		func(ctx context.Context, event *entities.EventStatusChanged_v1) error {
			h.logger.Info().
				Str("event_id", event.EventID).
				Str("from", string(event.From)).
				Str("to", string(event.To)).
				Time("changed_at", event.ChangedAt).
				Msg("event status changed")
			return nil
		},
	)
}

func (h *Handler) InvoiceNotifier() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"invoice_notifier",
		func(ctx context.Context, event *entities.EventInvoiced_v1) error {
			h.logger.Info().
				Str("event_id", event.EventID).
				Str("client_id", event.ClientID).
				Float64("budget", event.Budget).
				Msg("event invoiced")
			return nil
		},
	)
}

func (h *Handler) PaymentNotifier() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"payment_notifier",
		func(ctx context.Context, event *entities.EventPaid_v1) error {
			h.logger.Info().
				Str("event_id", event.EventID).
				Str("payment_method", event.PaymentMethod).
				Float64("budget", event.Budget).
				Msg("event paid")
			return nil
		},
	)
}

func (h *Handler) OverdueNotifier() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"overdue_notifier",
		func(ctx context.Context, event *entities.PaymentOverdue_v1) error {
			h.logger.Warn().
				Str("event_id", event.EventID).
				Int("overdue_days", event.OverdueDays).
				Time("invoiced_at", event.InvoicedAt).
				Msg("payment overdue")
			return nil
		},
	)
}
