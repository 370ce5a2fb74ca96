package observability

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// PublisherWithTracing injects the current trace context into message
// metadata so consumers can continue the trace.
type PublisherWithTracing struct {
	message.Publisher
}

func (p PublisherWithTracing) Publish(topic string, messages ...*message.Message) error {
	for i := range messages {
		otel.GetTextMapPropagator().
			Inject(messages[i].Context(), propagation.MapCarrier(messages[i].Metadata))
	}
	return p.Publisher.Publish(topic, messages...)
}

// CorrelationPublisherDecorator stamps the context's correlation id onto
// every outgoing message.
type CorrelationPublisherDecorator struct {
	message.Publisher
}

func (c CorrelationPublisherDecorator) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if id := CorrelationIDFromContext(msg.Context()); id != "" {
			msg.Metadata.Set("correlation_id", id)
		}
	}
	return c.Publisher.Publish(topic, messages...)
}
