// Package migration bulk-copies the local store into the cloud backend.
// The copy is a one-shot operation and idempotent: every record is an
// upsert keyed by id, so re-running cannot duplicate anything.
package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	trmanager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/rs/zerolog"

	"atelier/internal/entities"
)

type LocalEventsRepo interface {
	List(ctx context.Context) ([]entities.Event, error)
}

type LocalClientsRepo interface {
	List(ctx context.Context) ([]entities.Client, error)
}

type LocalFloristsRepo interface {
	List(ctx context.Context) ([]entities.Florist, error)
}

type CloudEventsRepo interface {
	Upsert(ctx context.Context, ev entities.Event) error
	Count(ctx context.Context) (int64, error)
}

type CloudClientsRepo interface {
	Upsert(ctx context.Context, c entities.Client) error
}

type CloudFloristsRepo interface {
	Upsert(ctx context.Context, f entities.Florist) error
}

// Report summarizes one migration run.
type Report struct {
	Events   int `json:"events"`
	Clients  int `json:"clients"`
	Florists int `json:"florists"`
}

type Migrator struct {
	localEvents   LocalEventsRepo
	localClients  LocalClientsRepo
	localFlorists LocalFloristsRepo

	cloudEvents   CloudEventsRepo
	cloudClients  CloudClientsRepo
	cloudFlorists CloudFloristsRepo

	trManager *trmanager.Manager
	eventBus  *cqrs.EventBus
	logger    zerolog.Logger
}

func NewMigrator(
	localEvents LocalEventsRepo,
	localClients LocalClientsRepo,
	localFlorists LocalFloristsRepo,
	cloudEvents CloudEventsRepo,
	cloudClients CloudClientsRepo,
	cloudFlorists CloudFloristsRepo,
	trManager *trmanager.Manager,
	eventBus *cqrs.EventBus,
	logger zerolog.Logger,
) *Migrator {
	return &Migrator{
		localEvents:   localEvents,
		localClients:  localClients,
		localFlorists: localFlorists,
		cloudEvents:   cloudEvents,
		cloudClients:  cloudClients,
		cloudFlorists: cloudFlorists,
		trManager:     trManager,
		eventBus:      eventBus,
		logger:        logger.With().Str("component", "migration").Logger(),
	}
}

// Run copies every local record to the cloud backend inside a single
// transaction. Safe to call again after a partial failure or a full
// success.
func (m *Migrator) Run(ctx context.Context) (Report, error) {
	events, err := m.localEvents.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load local events: %w", err)
	}
	clients, err := m.localClients.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load local clients: %w", err)
	}
	florists, err := m.localFlorists.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load local florists: %w", err)
	}

	err = m.trManager.Do(ctx, func(ctx context.Context) error {
		for _, ev := range events {
			if err := m.cloudEvents.Upsert(ctx, ev); err != nil {
				return err
			}
		}
		for _, c := range clients {
			if err := m.cloudClients.Upsert(ctx, c); err != nil {
				return err
			}
		}
		for _, f := range florists {
			if err := m.cloudFlorists.Upsert(ctx, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("migration transaction failed: %w", err)
	}

	report := Report{
		Events:   len(events),
		Clients:  len(clients),
		Florists: len(florists),
	}

	m.logger.Info().
		Int("events", report.Events).
		Int("clients", report.Clients).
		Int("florists", report.Florists).
		Msg("local store migrated to cloud backend")

	if m.eventBus != nil {
		err := m.eventBus.Publish(ctx, entities.StoreMigrated_v1{
			Header:     entities.NewEventHeader(),
			Events:     report.Events,
			Clients:    report.Clients,
			Florists:   report.Florists,
			MigratedAt: time.Now(),
		})
		if err != nil {
			m.logger.Error().Err(err).Msg("failed to publish migration event")
		}
	}

	return report, nil
}
