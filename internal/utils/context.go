package utils

import (
	"context"
)

type contextKey string

const (
	ContextUserIDKey    contextKey = "userID"
	ContextPrincipalKey contextKey = "principal"
)

// Principal is the authenticated caller as resolved from the session token.
type Principal struct {
	UserID    string
	Email     string
	Name      string
	IsPremium bool
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, ContextUserIDKey, p.UserID)
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ContextPrincipalKey).(Principal)
	return p, ok
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID := ctx.Value(ContextUserIDKey)
	userIDStr, ok := userID.(string)
	return userIDStr, ok
}
