// Package auth holds the staff authentication provider (MySQL accounts,
// Redis-backed sessions) and the session guard that gates the operator
// surface.
package auth

import "context"

// Principal identifies an authenticated staff member.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// ContextKeyPrincipal is the key under which the authenticated principal is
// stored in the request context.
const ContextKeyPrincipal ContextKey = "principal"

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// PrincipalFromContext retrieves the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(ContextKeyPrincipal).(*Principal); ok {
		return p
	}
	return nil
}
