// ABOUTME: Request identity propagation for authenticated handlers
// ABOUTME: Provides WithUser/UserFromContext for carrying the user ID via context

package auth

import (
	"context"
)

// userIDKey is the key type for storing the authenticated user ID in context.Context.
type userIDKey struct{}

// WithUser returns a new context with the authenticated user ID attached.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserFromContext retrieves the authenticated user ID from the context,
// returning the empty string if not present.
func UserFromContext(ctx context.Context) string {
	val := ctx.Value(userIDKey{})
	if val == nil {
		return ""
	}
	id, ok := val.(string)
	if !ok {
		return ""
	}
	return id
}

// MustUserFromContext retrieves the authenticated user ID from the context,
// panicking if not present. Handlers mounted behind RequireAuth can rely on it.
func MustUserFromContext(ctx context.Context) string {
	id := UserFromContext(ctx)
	if id == "" {
		panic("auth: user ID not found in context")
	}
	return id
}
