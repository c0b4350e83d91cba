// Package identity resolves bearer credentials to authenticated callers.
// Resolution failure is not a transport error; it yields an unauthenticated
// request context and the per-route gate decides whether to reject.
package identity

import (
	"context"
	"time"

	"github.com/seedbotics/fieldgate/internal/domain/user"
)

// Identity is the resolved caller attached to a request context.
type Identity struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   user.Role `json:"role"`
}

// Issuer mints a bearer token for a user at register/login time.
type Issuer interface {
	Issue(u user.User) (token string, expiresAt time.Time, err error)
}

// Resolver maps a raw bearer token to an identity. Implementations return an
// error when the token is absent from their scheme, expired or malformed; the
// caller then proceeds unauthenticated.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

type contextKey struct{}

// WithIdentity attaches a resolved identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the caller identity, if any was resolved.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
