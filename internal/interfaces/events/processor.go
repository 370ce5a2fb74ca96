package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// SubscriberConstructor builds a subscriber for one event handler; brokered
// setups give every handler its own consumer group.
type SubscriberConstructor func(handlerName string) (message.Subscriber, error)

func NewEventProcessor(
	router *message.Router,
	subscriberConstructor SubscriberConstructor,
	logger watermill.LoggerAdapter,
) (*cqrs.EventProcessor, error) {
	return cqrs.NewEventProcessorWithConfig(
		router,
		cqrs.EventProcessorConfig{
			GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
				return EventsTopic + "." + params.EventName, nil
			},
			SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
				return subscriberConstructor(params.HandlerName)
			},
			Marshaler: NewMarshaler(),
			Logger:    logger,
		},
	)
}
