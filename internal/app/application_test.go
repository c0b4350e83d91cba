package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seedbotics/fieldgate/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1", Port: 0,
			ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second,
			IdleTimeout: 5 * time.Second, ShutdownTimeout: time.Second,
		},
		Auth:        config.AuthConfig{Mode: config.AuthModeDemo},
		Storage:     config.StorageConfig{Backend: config.BackendMemory},
		DeviceLink:  config.DeviceLinkConfig{Backend: config.BackendMock},
		ObjectStore: config.ObjectStoreConfig{Backend: config.BackendMemory},
		RateLimit:   config.RateLimitConfig{Enabled: false},
		CORS:        config.CORSConfig{AllowedOrigins: "*"},
		Logging:     config.LoggingConfig{Level: "error", Format: "json"},
		Seed:        config.SeedConfig{Enabled: true},
	}
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestDemoModeSeedsAndServes(t *testing.T) {
	app, err := New(context.Background(), testConfig())
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, body := postJSON(t, srv.Client(), srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "demo@seedbotics.io",
		"password": "demo1234",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.True(t, strings.HasPrefix(token, "demo_token_"), "token = %q", token)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/robots", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var robots struct {
		Robots []struct {
			ID string `json:"id"`
		} `json:"robots"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&robots))
	require.Len(t, robots.Robots, 1)
	require.Equal(t, "robot_demo", robots.Robots[0].ID)
}

func TestJWTModeIssuesVerifiableTokens(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Mode: config.AuthModeJWT, JWTSecret: "test-secret", TokenTTL: time.Hour}
	cfg.Seed.Enabled = false

	app, err := New(context.Background(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, body := postJSON(t, srv.Client(), srv.URL+"/api/auth/register", "", map[string]string{
		"email":    "kofi@example.com",
		"password": "longenough",
		"name":     "Kofi Boateng",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	require.False(t, strings.HasPrefix(token, "demo_token_"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	meResp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer meResp.Body.Close()
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	// A token signed with a different secret must not resolve.
	other, err := New(context.Background(), func() *config.Config {
		c := testConfig()
		c.Auth = config.AuthConfig{Mode: config.AuthModeJWT, JWTSecret: "other-secret", TokenTTL: time.Hour}
		c.Seed.Enabled = false
		return c
	}())
	require.NoError(t, err)
	otherSrv := httptest.NewServer(other.Handler())
	defer otherSrv.Close()

	req, err = http.NewRequest(http.MethodGet, otherSrv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	crossResp, err := otherSrv.Client().Do(req)
	require.NoError(t, err)
	defer crossResp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, crossResp.StatusCode)
}

func TestRateLimitChain(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2}

	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, app.Shutdown(context.Background()))
	}()

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	var last int
	for i := 0; i < 3; i++ {
		resp, err := srv.Client().Get(srv.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		last = resp.StatusCode
	}
	require.Equal(t, http.StatusTooManyRequests, last)
}
