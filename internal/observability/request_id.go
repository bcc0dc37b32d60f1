package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// RequestIDKey stores the request ID in a request context.
const RequestIDKey contextKey = "request_id"

// NewRequestID returns a random UUID string.
func NewRequestID() string {
	return uuid.NewString()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
