package admin

import (
	"context"

	"github.com/gestora/backend/pkg/membership"
)

// callerCtxKey is the context key for the authenticated caller.
type callerCtxKey struct{}

// WithCaller stores the authenticated user in the context. The session
// layer in front of this module is responsible for calling it.
func WithCaller(ctx context.Context, user *membership.User) context.Context {
	return context.WithValue(ctx, callerCtxKey{}, user)
}

// CallerFromContext retrieves the authenticated user from the context.
func CallerFromContext(ctx context.Context) (*membership.User, bool) {
	user, ok := ctx.Value(callerCtxKey{}).(*membership.User)
	return user, ok && user != nil
}
