package correlationid

import (
	"context"
)

// Header is the HTTP header and message header key carrying the correlation id.
const Header = "X-Correlation-Id"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the given correlation id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the correlation id from ctx, if present.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
