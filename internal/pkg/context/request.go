// Package context carries request-scoped values shared by transport and logging.
package context

import "context"

type contextKey int

const (
	requestIDKey contextKey = iota
	callerKey
)

// Caller is the identity proven by a verified access token.
type Caller struct {
	UserID string
	Role   string
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns "" when ctx carries no id.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// GetCaller reports false for anonymous requests.
func GetCaller(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok && c.UserID != ""
}
