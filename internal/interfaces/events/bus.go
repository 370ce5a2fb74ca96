package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventsTopic is the single stream every domain event is published to; the
// router splits it into per-event topics for the processor.
const EventsTopic = "events"

func NewMarshaler() cqrs.CommandEventMarshaler {
	return cqrs.JSONMarshaler{
		GenerateName: cqrs.StructName,
	}
}

func NewEventBus(
	pub message.Publisher,
	logger watermill.LoggerAdapter,
) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(
		pub,
		cqrs.EventBusConfig{
			GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
				return EventsTopic, nil
			},
			Marshaler: NewMarshaler(),
			Logger:    logger,
		},
	)
}
