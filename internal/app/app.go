// Package app assembles the service: the local store, the usecases, the
// message router, the HTTP server and the scheduler, with the optional
// redis and postgres backends layered in when configured.
package app

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"atelier/internal/application/usecases/billing"
	"atelier/internal/application/usecases/clients"
	"atelier/internal/application/usecases/planner"
	"atelier/internal/config"
	"atelier/internal/interfaces/events"
	"atelier/internal/interfaces/http"
	"atelier/internal/migration"
	"atelier/internal/observability"
	"atelier/internal/repository"
	"atelier/internal/scheduler"
	"atelier/internal/store"
)

type App struct {
	logger zerolog.Logger

	router *message.Router
	srv    *http.Server
	sched  *scheduler.Scheduler

	store             *store.Store
	changesSubscriber message.Subscriber

	// db is nil when no cloud backend is configured.
	db *sqlx.DB
}

func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	watermillLogger := observability.NewWatermillLogger(logger)

	var (
		publisher             message.Publisher
		eventsSubscriber      message.Subscriber
		changesSubscriber     message.Subscriber
		subscriberConstructor events.SubscriberConstructor
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rdb := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: rdb,
		}, watermillLogger)
		if err != nil {
			return nil, err
		}
		eventsSubscriber, err = redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        rdb,
			ConsumerGroup: "svc-atelier.events",
		}, watermillLogger)
		if err != nil {
			return nil, err
		}
		// No consumer group: every running instance must see every change
		// message to refresh its own subscribers.
		changesSubscriber, err = redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client: rdb,
		}, watermillLogger)
		if err != nil {
			return nil, err
		}
		subscriberConstructor = func(handlerName string) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        rdb,
				ConsumerGroup: "svc-atelier." + handlerName,
			}, watermillLogger)
		}
	} else {
		pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
		publisher = pubsub
		eventsSubscriber = pubsub
		changesSubscriber = pubsub
		subscriberConstructor = func(string) (message.Subscriber, error) {
			return pubsub, nil
		}
	}

	publisher = observability.CorrelationPublisherDecorator{Publisher: publisher}
	publisher = observability.PublisherWithTracing{Publisher: publisher}

	backend, err := store.NewFileBackend(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	st := store.NewStore(backend, publisher, logger)

	eventsRepo := repository.NewEventsRepo(st)
	clientsRepo := repository.NewClientsRepo(st)
	floristsRepo := repository.NewFloristsRepo(st)

	eventBus, err := events.NewEventBus(publisher, watermillLogger)
	if err != nil {
		return nil, err
	}

	plannerUsecase := planner.NewUsecase(eventsRepo, eventBus, logger)
	billingUsecase := billing.NewUsecase(eventsRepo, eventBus, logger, cfg.OverdueAfterDays)
	clientsUsecase := clients.NewUsecase(clientsRepo)

	var (
		db        *sqlx.DB
		auditRepo events.AuditRepository
		migrator  *migration.Migrator
	)
	if cfg.PostgresURL != "" {
		db, err = sqlx.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, err
		}

		auditRepo = repository.NewAuditRepo(db)

		getter := trmsqlx.DefaultCtxGetter
		migrator = migration.NewMigrator(
			eventsRepo,
			clientsRepo,
			floristsRepo,
			repository.NewCloudEventsRepo(db, getter),
			repository.NewCloudClientsRepo(db, getter),
			repository.NewCloudFloristsRepo(db, getter),
			manager.Must(trmsqlx.NewDefaultFactory(db)),
			eventBus,
			logger,
		)
	}

	router, err := events.NewRouter(watermillLogger, eventsSubscriber, publisher, subscriberConstructor, auditRepo, logger)
	if err != nil {
		return nil, err
	}

	srv := http.NewServer(
		cfg.Listen,
		plannerUsecase,
		billingUsecase,
		clientsUsecase,
		floristsRepo,
		migrator,
		cfg.UrgentLimit,
		router.IsRunning,
		logger,
	)

	sched, err := scheduler.New(cfg.StatusSyncCron, cfg.OverdueCheckCron, scheduler.Jobs{
		SyncStatuses: func(ctx context.Context, now time.Time) error {
			_, err := plannerUsecase.SyncStatuses(ctx, now)
			return err
		},
		CheckOverdue: func(ctx context.Context, now time.Time) error {
			_, err := billingUsecase.CheckOverdue(ctx, now)
			return err
		},
	}, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		logger:            logger,
		router:            router,
		srv:               srv,
		sched:             sched,
		store:             st,
		changesSubscriber: changesSubscriber,
		db:                db,
	}, nil
}

// Run starts everything and blocks until the context ends or a component
// fails. The HTTP server only accepts traffic once the router is running.
func (a *App) Run(ctx context.Context) error {
	if a.db != nil {
		if err := repository.InitializeDBSchema(a.db); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Msg("starting router")
		return a.router.Run(ctx)
	})

	g.Go(func() error {
		return a.store.RunFeed(ctx, a.changesSubscriber)
	})

	g.Go(func() error {
		return a.sched.Run(ctx)
	})

	g.Go(func() error {
		<-a.router.Running()
		a.logger.Info().Msg("router is running, starting server")
		return a.srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := a.srv.Stop(context.Background()); err != nil {
			a.logger.Err(err).Msg("error stopping server")
			return err
		}
		return nil
	})

	return g.Wait()
}
