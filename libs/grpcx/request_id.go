package grpcx

import (
	"context"

	"github.com/google/uuid"
)

type ctxKeyRequestID struct{}

// RequestIDMetadataKey carries the request id in gRPC metadata (lowercase per metadata rules).
const RequestIDMetadataKey = "x-request-id"

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return v
}

func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

func NewRequestID() string {
	return uuid.NewString()
}
