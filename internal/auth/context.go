// ABOUTME: Authenticated identity carried through request handlers
// ABOUTME: Provides WithIdentity/FromContext for propagating the caller via context

package auth

import (
	"context"
)

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UserID string
	Email  string
}

// identityKey is the key type for storing Identity in context.Context.
type identityKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext retrieves the Identity from the context, returning nil if not present.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

// MustFromContext retrieves the Identity from the context, panicking if not present.
// Only call it from handlers mounted behind RequireUser.
func MustFromContext(ctx context.Context) *Identity {
	id := FromContext(ctx)
	if id == nil {
		panic("auth: Identity not found in context")
	}
	return id
}
