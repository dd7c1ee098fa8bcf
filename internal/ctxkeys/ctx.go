package ctxkeys

import (
	"context"

	"github.com/filevault/filevault/internal/service"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey contextKey = "user"
)

// User returns the verified token claims attached by the auth gate, or nil
// when the request did not pass through it.
func User(ctx context.Context) *service.Claims {
	user, _ := ctx.Value(UserKey).(*service.Claims)
	return user
}

func WithUser(ctx context.Context, user *service.Claims) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
