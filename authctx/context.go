// Package authctx propagates validated token claims through request context.
//
// Middleware stores the claims after validating a bearer token; handlers
// retrieve them without knowing which transport performed the validation.
package authctx

import (
	"context"
	"errors"

	"github.com/kbukum/authkit/token"
)

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

var claimsKey = contextKey{}

// ErrNoClaims is returned when claims are not found in the context.
var ErrNoClaims = errors.New("authctx: no claims in context")

// Set stores validated claims in the context.
func Set(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Get retrieves claims from the context.
func Get(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*token.Claims)
	return claims, ok
}

// GetOrError retrieves claims from the context, returning ErrNoClaims when
// no middleware stored them.
func GetOrError(ctx context.Context) (*token.Claims, error) {
	claims, ok := Get(ctx)
	if !ok {
		return nil, ErrNoClaims
	}
	return claims, nil
}

// MustGet retrieves claims from the context.
// Panics if claims are missing. Use in handlers where authentication
// middleware guarantees claims exist.
func MustGet(ctx context.Context) *token.Claims {
	claims, ok := Get(ctx)
	if !ok {
		panic("authctx: claims not found in context")
	}
	return claims
}

// Subject returns the authenticated subject from the context.
func Subject(ctx context.Context) (string, error) {
	claims, ok := Get(ctx)
	if !ok {
		return "", ErrNoClaims
	}
	return claims.Subject, nil
}
