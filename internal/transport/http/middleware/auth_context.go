package middleware

import (
	"context"

	appCtx "github.com/baechuer/iset-library/internal/pkg/context"
)

// WithUser records the verified token identity on ctx.
func WithUser(ctx context.Context, userID, role string) context.Context {
	return appCtx.WithCaller(ctx, appCtx.Caller{UserID: userID, Role: role})
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	c, ok := appCtx.GetCaller(ctx)
	return c.UserID, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	c, ok := appCtx.GetCaller(ctx)
	if !ok || c.Role == "" {
		return "", false
	}
	return c.Role, true
}
