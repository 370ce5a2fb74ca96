// Package billing sequences the paid tail of the event lifecycle:
// completed -> invoiced -> paid, plus the overdue audit affordances.
package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/rs/zerolog"

	"atelier/internal/dateutil"
	"atelier/internal/entities"
	"atelier/internal/idempotency"
)

var (
	ErrEventNotCompleted    = errors.New("event is not completed yet")
	ErrUnderstaffed         = errors.New("event is understaffed, confirm the missing florists first")
	ErrEventNotInvoiced     = errors.New("event has not been invoiced")
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
)

// DefaultPaymentMethod is recorded when MarkPaid is called without one.
const DefaultPaymentMethod = "transfer"

// DefaultOverdueAfterDays is how long an invoice may stay unpaid before the
// event counts as overdue.
const DefaultOverdueAfterDays = 30

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusOverdue  PaymentStatus = "overdue"
	PaymentStatusReminder PaymentStatus = "reminder"
)

// PaymentOptions carries the recognized optional fields of MarkPaid.
type PaymentOptions struct {
	// PaymentMethod defaults to DefaultPaymentMethod when empty.
	PaymentMethod string
}

//go:generate mockgen -destination=mocks/mock_events_repo.go -package=mocks atelier/internal/application/usecases/billing EventsRepo
type EventsRepo interface {
	List(ctx context.Context) ([]entities.Event, error)
	Mutate(ctx context.Context, id string, fn func(*entities.Event) error) (entities.Event, error)
}

type Usecase struct {
	events           EventsRepo
	eventBus         *cqrs.EventBus
	logger           zerolog.Logger
	overdueAfterDays int

	mu      sync.Mutex
	flagged map[string]struct{}
}

func NewUsecase(events EventsRepo, eventBus *cqrs.EventBus, logger zerolog.Logger, overdueAfterDays int) *Usecase {
	if overdueAfterDays <= 0 {
		overdueAfterDays = DefaultOverdueAfterDays
	}
	return &Usecase{
		events:           events,
		eventBus:         eventBus,
		logger:           logger.With().Str("component", "billing").Logger(),
		overdueAfterDays: overdueAfterDays,
		flagged:          map[string]struct{}{},
	}
}

// ArchiveAndInvoice moves a completed, fully staffed event to invoiced and
// stamps the invoice date. Any failed precondition leaves the event
// untouched.
func (u *Usecase) ArchiveAndInvoice(ctx context.Context, eventID string) (entities.Event, error) {
	now := time.Now()

	ev, err := u.events.Mutate(ctx, eventID, func(ev *entities.Event) error {
		if ev.Status != entities.StatusCompleted {
			return fmt.Errorf("%w: status is %q", ErrEventNotCompleted, ev.Status)
		}
		if ev.ConfirmedFlorists() < ev.RequiredFlorists {
			return fmt.Errorf("%w: %d of %d confirmed", ErrUnderstaffed, ev.ConfirmedFlorists(), ev.RequiredFlorists)
		}

		ev.Status = entities.StatusInvoiced
		ev.Invoiced = true
		ev.Archived = true
		ev.InvoiceDate = &now
		ev.UpdatedAt = now
		return nil
	})
	if err != nil {
		return entities.Event{}, err
	}

	u.publish(ctx, entities.EventInvoiced_v1{
		Header:     entities.NewEventHeaderWithIdempotencyKey(idempotency.Key(ctx) + ev.ID),
		EventID:    ev.ID,
		ClientID:   ev.ClientID,
		Budget:     ev.Budget,
		InvoicedAt: now,
	})
	u.publishStatusChange(ctx, ev.ID, entities.StatusCompleted, entities.StatusInvoiced, now)

	return ev, nil
}

// MarkPaid settles an invoiced event. The completed date is backfilled when
// the event skipped the explicit completion stamp.
func (u *Usecase) MarkPaid(ctx context.Context, eventID string, opts PaymentOptions) (entities.Event, error) {
	now := time.Now()

	method := opts.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}

	ev, err := u.events.Mutate(ctx, eventID, func(ev *entities.Event) error {
		if ev.Status != entities.StatusInvoiced {
			return fmt.Errorf("%w: status is %q", ErrEventNotInvoiced, ev.Status)
		}

		ev.Status = entities.StatusPaid
		ev.PaidDate = &now
		ev.PaymentMethod = method
		if ev.CompletedDate == nil {
			ev.CompletedDate = &now
		}
		ev.UpdatedAt = now
		return nil
	})
	if err != nil {
		return entities.Event{}, err
	}

	u.publish(ctx, entities.EventPaid_v1{
		Header:        entities.NewEventHeaderWithIdempotencyKey(idempotency.Key(ctx) + ev.ID),
		EventID:       ev.ID,
		ClientID:      ev.ClientID,
		Budget:        ev.Budget,
		PaymentMethod: method,
		PaidAt:        now,
	})
	u.publishStatusChange(ctx, ev.ID, entities.StatusInvoiced, entities.StatusPaid, now)

	return ev, nil
}

// UpdatePaymentStatus handles the payment follow-up actions. "paid" is a
// real transition; "overdue" and "reminder" only append a timestamped note
// to the event's audit trail.
func (u *Usecase) UpdatePaymentStatus(ctx context.Context, eventID string, status PaymentStatus) (entities.Event, error) {
	switch status {
	case PaymentStatusPaid:
		return u.MarkPaid(ctx, eventID, PaymentOptions{})
	case PaymentStatusOverdue:
		return u.appendNote(ctx, eventID, string(status), "payment overdue")
	case PaymentStatusReminder:
		return u.appendNote(ctx, eventID, string(status), "payment reminder sent")
	default:
		return entities.Event{}, fmt.Errorf("%w: %q", ErrUnknownPaymentStatus, status)
	}
}

// noteTimestampLayout keeps two notes on the same day distinguishable.
const noteTimestampLayout = "2006-01-02 15:04"

func (u *Usecase) appendNote(ctx context.Context, eventID, kind, text string) (entities.Event, error) {
	now := time.Now()
	note := fmt.Sprintf("%s: %s", now.Format(noteTimestampLayout), text)

	ev, err := u.events.Mutate(ctx, eventID, func(ev *entities.Event) error {
		if ev.Notes != "" {
			ev.Notes += "\n"
		}
		ev.Notes += note
		ev.UpdatedAt = now
		return nil
	})
	if err != nil {
		return entities.Event{}, err
	}

	u.publish(ctx, entities.PaymentNoteAdded_v1{
		Header:  entities.NewEventHeaderWithIdempotencyKey(idempotency.Key(ctx) + eventID),
		EventID: eventID,
		Kind:    kind,
		Note:    note,
		AddedAt: now,
	})

	return ev, nil
}

// CheckOverdue is the periodic sweep: it publishes PaymentOverdue_v1 once
// per event that crossed the overdue threshold since the last flagging and
// returns the ids of every currently overdue event.
func (u *Usecase) CheckOverdue(ctx context.Context, now time.Time) ([]string, error) {
	events, err := u.events.List(ctx)
	if err != nil {
		return nil, err
	}

	var overdue []string
	for _, ev := range events {
		if !u.isOverdue(ev, now) {
			continue
		}
		overdue = append(overdue, ev.ID)

		u.mu.Lock()
		_, seen := u.flagged[ev.ID]
		if !seen {
			u.flagged[ev.ID] = struct{}{}
		}
		u.mu.Unlock()
		if seen {
			continue
		}

		u.publish(ctx, entities.PaymentOverdue_v1{
			Header:      entities.NewEventHeader(),
			EventID:     ev.ID,
			InvoicedAt:  *ev.InvoiceDate,
			OverdueDays: dateutil.DaysUntil(*ev.InvoiceDate, now),
		})
	}

	return overdue, nil
}

func (u *Usecase) isOverdue(ev entities.Event, now time.Time) bool {
	if ev.Status != entities.StatusInvoiced || ev.InvoiceDate == nil {
		return false
	}
	return now.Sub(*ev.InvoiceDate) > time.Duration(u.overdueAfterDays)*24*time.Hour
}

// publish is fire-and-forget: the state transition already landed in the
// store and is not rolled back on a broker failure.
func (u *Usecase) publish(ctx context.Context, event any) {
	if u.eventBus == nil {
		return
	}
	if err := u.eventBus.Publish(ctx, event); err != nil {
		u.logger.Error().Err(err).Msg("failed to publish billing event")
	}
}

func (u *Usecase) publishStatusChange(ctx context.Context, eventID string, from, to entities.Status, at time.Time) {
	u.publish(ctx, entities.EventStatusChanged_v1{
		Header:    entities.NewEventHeader(),
		EventID:   eventID,
		From:      from,
		To:        to,
		ChangedAt: at,
	})
}
