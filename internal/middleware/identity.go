// Package middleware provides HTTP middleware for the fieldgate API.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/identity"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// IdentityMiddleware resolves bearer tokens into request identities. An
// absent, malformed or unresolvable token never fails the request here; the
// request proceeds unauthenticated and the per-route gate decides.
type IdentityMiddleware struct {
	resolver identity.Resolver
	logger   *logger.Logger
}

// NewIdentityMiddleware builds the middleware around a resolver.
func NewIdentityMiddleware(resolver identity.Resolver, log *logger.Logger) *IdentityMiddleware {
	if log == nil {
		log = logger.NewDefault("middleware")
	}
	return &IdentityMiddleware{resolver: resolver, logger: log}
}

// Handler returns the identity resolution handler.
func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			m.logger.WithError(err).Debug("bearer token did not resolve")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireIdentity gates a route on a resolved identity, failing closed with
// an unauthorized error.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.FromContext(r.Context()); !ok {
			respondError(w, apperr.Unauthorized(""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// respondError writes a ServiceError in the API's JSON error envelope.
func respondError(w http.ResponseWriter, serviceErr *apperr.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serviceErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": serviceErr})
}
