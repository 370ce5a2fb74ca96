// Package planner owns the event collection: creation and edits, the
// explicit derived-status reconciliation step, and the board and urgency
// read views.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"atelier/internal/domain/lifecycle"
	"atelier/internal/domain/urgency"
	"atelier/internal/entities"
)

var ErrAlreadySettled = errors.New("event is already settled and cannot be cancelled")

//go:generate mockgen -destination=mocks/mock_events_repo.go -package=mocks atelier/internal/application/usecases/planner EventsRepo
type EventsRepo interface {
	List(ctx context.Context) ([]entities.Event, error)
	Get(ctx context.Context, id string) (entities.Event, error)
	Create(ctx context.Context, ev entities.Event) error
	Update(ctx context.Context, ev entities.Event) error
	Mutate(ctx context.Context, id string, fn func(*entities.Event) error) (entities.Event, error)
}

type Usecase struct {
	events   EventsRepo
	eventBus *cqrs.EventBus
	logger   zerolog.Logger
}

func NewUsecase(events EventsRepo, eventBus *cqrs.EventBus, logger zerolog.Logger) *Usecase {
	return &Usecase{
		events:   events,
		eventBus: eventBus,
		logger:   logger.With().Str("component", "planner").Logger(),
	}
}

// Create stores a new event. The initial stored status is its derived one,
// so a fully staffed future event starts out confirmed, not draft.
func (u *Usecase) Create(ctx context.Context, ev entities.Event) (entities.Event, error) {
	now := time.Now()

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Status == "" {
		ev.Status = lifecycle.DeriveStatus(ev, now)
	}
	if !ev.Status.Valid() {
		return entities.Event{}, fmt.Errorf("invalid status %q", ev.Status)
	}
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if err := u.events.Create(ctx, ev); err != nil {
		return entities.Event{}, err
	}
	return ev, nil
}

func (u *Usecase) Get(ctx context.Context, id string) (entities.Event, error) {
	return u.events.Get(ctx, id)
}

func (u *Usecase) List(ctx context.Context) ([]entities.Event, error) {
	return u.events.List(ctx)
}

func (u *Usecase) Update(ctx context.Context, ev entities.Event) (entities.Event, error) {
	if !ev.Status.Valid() {
		return entities.Event{}, fmt.Errorf("invalid status %q", ev.Status)
	}
	ev.UpdatedAt = time.Now()
	if err := u.events.Update(ctx, ev); err != nil {
		return entities.Event{}, err
	}
	return ev, nil
}

// Cancel is terminal and allowed from any state that has not reached the
// billing tail.
func (u *Usecase) Cancel(ctx context.Context, id string) (entities.Event, error) {
	now := time.Now()
	var from entities.Status

	ev, err := u.events.Mutate(ctx, id, func(ev *entities.Event) error {
		switch ev.Status {
		case entities.StatusInvoiced, entities.StatusPaid, entities.StatusCancelled:
			return fmt.Errorf("%w: status is %q", ErrAlreadySettled, ev.Status)
		}
		from = ev.Status
		ev.Status = entities.StatusCancelled
		ev.CancelledAt = &now
		ev.UpdatedAt = now
		return nil
	})
	if err != nil {
		return entities.Event{}, err
	}

	u.publishStatusChange(ctx, ev.ID, from, entities.StatusCancelled, now)
	return ev, nil
}

// SyncStatuses is the explicit reconciliation step between derived and
// stored status: every event whose natural status differs gets the derived
// value written back, and a status-change event published. Terminal stored
// statuses are never touched.
func (u *Usecase) SyncStatuses(ctx context.Context, now time.Time) ([]entities.Event, error) {
	events, err := u.events.List(ctx)
	if err != nil {
		return nil, err
	}

	var changed []entities.Event
	for _, ev := range events {
		derived := lifecycle.DeriveStatus(ev, now)
		if derived == ev.Status {
			continue
		}

		from := ev.Status
		updated, err := u.events.Mutate(ctx, ev.ID, func(ev *entities.Event) error {
			ev.Status = derived
			if derived == entities.StatusCompleted && ev.CompletedDate == nil {
				ev.CompletedDate = &now
			}
			ev.UpdatedAt = now
			return nil
		})
		if err != nil {
			u.logger.Error().Err(err).Str("event_id", ev.ID).Msg("failed to persist derived status")
			continue
		}

		changed = append(changed, updated)
		u.publishStatusChange(ctx, ev.ID, from, derived, now)
	}

	if len(changed) > 0 {
		u.logger.Info().Int("events", len(changed)).Msg("reconciled derived statuses")
	}
	return changed, nil
}

// Board returns the kanban view: all events except paid ones that dropped
// off the rolling month cutoff.
func (u *Usecase) Board(ctx context.Context, now time.Time) ([]entities.Event, error) {
	events, err := u.events.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]entities.Event, 0, len(events))
	for _, ev := range events {
		if lifecycle.IsPaidEventVisible(ev, now) {
			visible = append(visible, ev)
		}
	}
	return visible, nil
}

// Urgent ranks the events needing attention, closest first.
func (u *Usecase) Urgent(ctx context.Context, now time.Time, limit int) ([]urgency.RankedEvent, error) {
	events, err := u.events.List(ctx)
	if err != nil {
		return nil, err
	}
	return urgency.Rank(events, now, urgency.Options{Limit: limit}), nil
}

func (u *Usecase) publishStatusChange(ctx context.Context, eventID string, from, to entities.Status, at time.Time) {
	if u.eventBus == nil {
		return
	}
	err := u.eventBus.Publish(ctx, entities.EventStatusChanged_v1{
		Header:    entities.NewEventHeader(),
		EventID:   eventID,
		From:      from,
		To:        to,
		ChangedAt: at,
	})
	if err != nil {
		u.logger.Error().Err(err).Str("event_id", eventID).Msg("failed to publish status change")
	}
}
