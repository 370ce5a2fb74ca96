// Package scheduler drives the periodic jobs: derived-status reconciliation
// and the overdue-invoice sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

// Jobs names the operations the scheduler drives; both take the current
// time so the underlying usecases stay clock-free.
type Jobs struct {
	SyncStatuses func(ctx context.Context, now time.Time) error
	CheckOverdue func(ctx context.Context, now time.Time) error
}

func New(statusSyncCron, overdueCheckCron string, jobs Jobs, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		logger: logger.With().Str("component", "scheduler").Logger(),
	}

	_, err := s.cron.AddFunc(statusSyncCron, func() {
		s.run("status sync", jobs.SyncStatuses)
	})
	if err != nil {
		return nil, err
	}

	_, err = s.cron.AddFunc(overdueCheckCron, func() {
		s.run("overdue check", jobs.CheckOverdue)
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Run starts the cron loop and blocks until the context ends. In-flight
// jobs are allowed to finish before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) run(name string, job func(ctx context.Context, now time.Time) error) {
	if job == nil {
		return
	}
	if err := job(context.Background(), time.Now()); err != nil {
		s.logger.Error().Err(err).Str("job", name).Msg("scheduled job failed")
		return
	}
	s.logger.Debug().Str("job", name).Msg("scheduled job finished")
}
