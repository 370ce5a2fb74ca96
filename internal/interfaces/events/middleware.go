package events

import (
	"encoding/json"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"atelier/internal/observability"
)

func CorrelationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := msg.Metadata.Get("correlation_id")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		msg.SetContext(observability.ContextWithCorrelationID(msg.Context(), correlationID))

		return next(msg)
	}
}

func LoggingMiddleware(logger zerolog.Logger) message.HandlerMiddleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			log := logger.With().
				Str("message_uuid", msg.UUID).
				Str("correlation_id", observability.CorrelationIDFromContext(msg.Context())).
				Logger()

			log.Debug().Msg("handling a message")

			messages, err := next(msg)
			if err != nil {
				log.Error().Err(err).Str("payload", string(msg.Payload)).Msg("message handling error")
			}

			return messages, err
		}
	}
}

// SkipMarshallingErrorsMiddleware acks messages whose payload cannot be
// decoded: retrying a malformed payload can never succeed, so it is logged
// by the layer above and dropped.
func SkipMarshallingErrorsMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		messages, err := next(msg)
		if err != nil && isUnmarshalError(err) {
			return nil, nil
		}
		return messages, err
	}
}

func isUnmarshalError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
