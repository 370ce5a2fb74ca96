package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"atelier/internal/application/usecases/billing"
	"atelier/internal/application/usecases/clients"
	"atelier/internal/application/usecases/planner"
	"atelier/internal/idempotency"
	"atelier/internal/migration"
	"atelier/internal/repository"
)

type Server struct {
	e      *echo.Echo
	listen string
	logger zerolog.Logger

	planner  *planner.Usecase
	billing  *billing.Usecase
	clients  *clients.Usecase
	florists *repository.FloristsRepo

	// migrator is nil when no cloud backend is configured.
	migrator *migration.Migrator

	// urgentLimit is the configured fallback for /events/urgent when the
	// caller does not pass an explicit limit.
	urgentLimit int
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(
	listen string,
	plannerUsecase *planner.Usecase,
	billingUsecase *billing.Usecase,
	clientsUsecase *clients.Usecase,
	floristsRepo *repository.FloristsRepo,
	migrator *migration.Migrator,
	urgentLimit int,
	routerIsRunning func() bool,
	logger zerolog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	srv := &Server{
		e:        e,
		listen:   listen,
		logger:   logger.With().Str("component", "http").Logger(),
		planner:  plannerUsecase,
		billing:  billingUsecase,
		clients:  clientsUsecase,
		florists: floristsRepo,
		migrator: migrator,

		urgentLimit: urgentLimit,
	}

	e.Use(echomiddleware.Recover())
	e.Use(srv.loggingMiddleware)
	e.Use(idempotencyKeyMiddleware)

	e.GET("/health", func(c echo.Context) error {
		if !routerIsRunning() {
			return c.String(http.StatusServiceUnavailable, "router is not running")
		}
		return c.String(http.StatusOK, "ok")
	})

	e.POST("/events", srv.CreateEventHandler)
	e.GET("/events", srv.ListEventsHandler)
	e.GET("/events/board", srv.BoardHandler)
	e.GET("/events/urgent", srv.UrgentEventsHandler)
	e.POST("/events/sync", srv.SyncStatusesHandler)
	e.GET("/events/:id", srv.GetEventHandler)
	e.PUT("/events/:id", srv.UpdateEventHandler)
	e.POST("/events/:id/cancel", srv.CancelEventHandler)

	e.POST("/events/:id/invoice", srv.ArchiveAndInvoiceHandler)
	e.POST("/events/:id/pay", srv.MarkPaidHandler)
	e.POST("/events/:id/payment-status", srv.UpdatePaymentStatusHandler)
	e.GET("/billing/stats", srv.BillingStatsHandler)

	e.POST("/clients", srv.CreateClientHandler)
	e.GET("/clients", srv.ListClientsHandler)
	e.GET("/clients/:id", srv.GetClientHandler)
	e.PUT("/clients/:id", srv.UpdateClientHandler)

	e.POST("/florists", srv.CreateFloristHandler)
	e.GET("/florists", srv.ListFloristsHandler)
	e.PUT("/florists/:id", srv.UpdateFloristHandler)
	e.GET("/florists/:id/availability", srv.FloristAvailabilityHandler)

	e.POST("/migrate", srv.MigrateHandler)

	return srv
}

func (s *Server) Start() error {
	err := s.e.Start(s.listen)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.logger.Debug().
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("handling a request")

		err := next(c)
		if err != nil {
			s.logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request handling error")
		}
		return err
	}
}

// idempotencyKeyMiddleware threads the caller's Idempotency-Key header into
// the context; billing operations stamp it onto published events.
func idempotencyKeyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if key := c.Request().Header.Get("Idempotency-Key"); key != "" {
			ctx := idempotency.WithKey(c.Request().Context(), key)
			c.SetRequest(c.Request().WithContext(ctx))
		}
		return next(c)
	}
}

// domainError maps domain failures onto HTTP statuses: missing records are
// 404, failed billing preconditions 409 so the caller knows not to retry
// blindly.
func domainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrClientNotFound),
		errors.Is(err, repository.ErrFloristNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, billing.ErrEventNotCompleted),
		errors.Is(err, billing.ErrUnderstaffed),
		errors.Is(err, billing.ErrEventNotInvoiced),
		errors.Is(err, planner.ErrAlreadySettled):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, billing.ErrUnknownPaymentStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
