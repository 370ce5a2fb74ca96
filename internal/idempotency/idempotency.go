// Package idempotency carries the caller-supplied idempotency key through
// the context so republished domain events deduplicate downstream.
package idempotency

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

// Key returns the key from the context, or a fresh one when the caller did
// not supply any.
func Key(ctx context.Context) string {
	key, ok := ctx.Value(ctxKey{}).(string)
	if !ok || key == "" {
		return uuid.NewString()
	}
	return key
}
