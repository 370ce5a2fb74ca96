package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"atelier/internal/entities"
)

//go:generate mockgen -destination=mocks/mock_audit_repository.go -package=mocks atelier/internal/interfaces/events AuditRepository
type AuditRepository interface {
	SaveEvent(ctx context.Context, id uuid.UUID, publishedAt time.Time, eventName string, payload []byte) error
}

// NewRouter assembles the message plumbing: the splitter fanning the shared
// events stream out into per-event topics, the optional audit saver, and
// the cqrs processor with the notification handlers.
func NewRouter(
	watermillLogger watermill.LoggerAdapter,
	eventsSubscriber message.Subscriber,
	publisher message.Publisher,
	subscriberConstructor SubscriberConstructor,
	auditRepo AuditRepository,
	logger zerolog.Logger,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(CorrelationIDMiddleware)
	router.AddMiddleware(LoggingMiddleware(logger))
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)
	router.AddMiddleware(SkipMarshallingErrorsMiddleware)

	marshaler := NewMarshaler()

	router.AddNoPublisherHandler(
		"events_splitter",
		EventsTopic,
		eventsSubscriber,
		func(msg *message.Message) error {
			eventName := marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("cannot get event name from message")
			}

			return publisher.Publish(EventsTopic+"."+eventName, msg)
		},
	)

	if auditRepo != nil {
		router.AddNoPublisherHandler(
			"events_saver",
			EventsTopic,
			eventsSubscriber,
			func(msg *message.Message) error {
				type envelope struct {
					Header entities.EventHeader `json:"header"`
				}

				var event envelope
				if err := json.Unmarshal(msg.Payload, &event); err != nil {
					return err
				}

				eventName := marshaler.NameFromMessage(msg)
				if eventName == "" {
					return fmt.Errorf("cannot get event name from message")
				}

				id, err := uuid.Parse(event.Header.Id)
				if err != nil {
					return fmt.Errorf("invalid event header id: %w", err)
				}

				return auditRepo.SaveEvent(msg.Context(), id, event.Header.PublishedAt, eventName, msg.Payload)
			},
		)
	}

	processor, err := NewEventProcessor(router, subscriberConstructor, watermillLogger)
	if err != nil {
		return nil, err
	}

	handler := NewHandler(logger)
	err = processor.AddHandlers(
		handler.StatusChangeLogger(),
		handler.InvoiceNotifier(),
		handler.PaymentNotifier(),
		handler.OverdueNotifier(),
	)
	if err != nil {
		return nil, err
	}

	return router, nil
}
