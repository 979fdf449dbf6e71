package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller as asserted by the hosted auth service.
// LegacyRole is kept as the raw claim; it is parsed where it is used.
type Identity struct {
	UserID     string
	Email      string
	LegacyRole string
}

// Claims is the access token payload.
type Claims struct {
	Email    string `json:"email"`
	UserRole string `json:"user_role"`
	jwt.RegisteredClaims
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
