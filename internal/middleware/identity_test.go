package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seedbotics/fieldgate/internal/identity"
)

type staticResolver struct {
	token string
	id    identity.Identity
}

func (r staticResolver) Resolve(_ context.Context, token string) (identity.Identity, error) {
	if token == r.token {
		return r.id, nil
	}
	return identity.Identity{}, identity.ErrUnresolvable
}

func identityProbe(t *testing.T) (http.Handler, *identity.Identity) {
	t.Helper()
	var captured identity.Identity
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := identity.FromContext(r.Context()); ok {
			captured = id
		}
		w.WriteHeader(http.StatusOK)
	})
	return handler, &captured
}

func TestIdentityMiddlewareResolvesBearerToken(t *testing.T) {
	resolver := staticResolver{token: "good-token", id: identity.Identity{UserID: "user_1"}}
	probe, captured := identityProbe(t)
	handler := NewIdentityMiddleware(resolver, nil).Handler(probe)

	req := httptest.NewRequest(http.MethodGet, "/api/robots", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if captured.UserID != "user_1" {
		t.Fatalf("identity not attached: %+v", captured)
	}
}

func TestIdentityMiddlewareToleratesMissingAndBadTokens(t *testing.T) {
	resolver := staticResolver{token: "good-token", id: identity.Identity{UserID: "user_1"}}

	for name, header := range map[string]string{
		"missing":      "",
		"malformed":    "NotBearer abc",
		"unresolvable": "Bearer wrong-token",
	} {
		t.Run(name, func(t *testing.T) {
			probe, captured := identityProbe(t)
			handler := NewIdentityMiddleware(resolver, nil).Handler(probe)

			req := httptest.NewRequest(http.MethodGet, "/api/robots", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("unauthenticated request should pass through, status = %d", rec.Code)
			}
			if captured.UserID != "" {
				t.Fatalf("identity should not be attached: %+v", captured)
			}
		})
	}
}

func TestRequireIdentityFailsClosed(t *testing.T) {
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/robots", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireIdentityPassesAuthenticated(t *testing.T) {
	called := false
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/robots", nil)
	req = req.WithContext(identity.WithIdentity(req.Context(), identity.Identity{UserID: "user_1"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("called=%v status=%d", called, rec.Code)
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	limiter := NewRateLimiter(1, 2, nil)
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/robots", nil)
		req.RemoteAddr = "10.0.0.1:55000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/robots", nil)
	req.RemoteAddr = "10.0.0.2:55000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("other caller should not be limited, status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := NewCORSMiddleware([]string{"https://app.seedbotics.io"}).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("preflight should not reach the handler")
		}))

	req := httptest.NewRequest(http.MethodOptions, "/api/robots", nil)
	req.Header.Set("Origin", "https://app.seedbotics.io")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.seedbotics.io" {
		t.Fatalf("allow-origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/robots", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("disallowed origin should get no CORS headers")
	}
}
