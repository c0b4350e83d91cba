package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/seedbotics/fieldgate/internal/apperr"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port = %d", cfg.Server.Port)
	}
	if cfg.Auth.Mode != AuthModeDemo {
		t.Fatalf("default auth mode = %s", cfg.Auth.Mode)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Fatalf("default storage backend = %s", cfg.Storage.Backend)
	}
	if !cfg.RateLimit.Enabled {
		t.Fatal("rate limiting should default on")
	}
}

func TestValidateRejectsJWTWithoutSecret(t *testing.T) {
	t.Setenv("FIELDGATE_AUTH_MODE", AuthModeJWT)
	t.Setenv("FIELDGATE_JWT_SECRET", "")

	_, err := Load()
	if !apperr.IsCode(err, apperr.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	cases := map[string]string{
		"FIELDGATE_STORAGE_BACKEND":     "postgres",
		"FIELDGATE_DEVICELINK_BACKEND":  "mqtt",
		"FIELDGATE_OBJECTSTORE_BACKEND": "nfs",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); !apperr.IsCode(err, apperr.CodeConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestCORSOrigins(t *testing.T) {
	c := CORSConfig{AllowedOrigins: "https://app.seedbotics.io, http://localhost:19006 ,"}
	origins := c.Origins()
	if len(origins) != 2 {
		t.Fatalf("got %d origins", len(origins))
	}
	if origins[0] != "https://app.seedbotics.io" || origins[1] != "http://localhost:19006" {
		t.Fatalf("unexpected origins: %v", origins)
	}
}

func TestLoadSeedDataFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	fixture := `
users:
  - id: user_1
    email: test@example.com
    name: Test User
    role: farmer
    password: secret123
robots:
  - id: robot_1
    userId: user_1
    name: Bot One
    serialNumber: SB-1
`
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	seed, err := LoadSeedData(path)
	if err != nil {
		t.Fatalf("LoadSeedData: %v", err)
	}
	if len(seed.Users) != 1 || seed.Users[0].Email != "test@example.com" || seed.Users[0].Password != "secret123" {
		t.Fatalf("unexpected users: %+v", seed.Users)
	}
	if len(seed.Robots) != 1 || seed.Robots[0].UserID != "user_1" {
		t.Fatalf("unexpected robots: %+v", seed.Robots)
	}
}

func TestLoadSeedDataRejectsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte("users:\n  - email: x@example.com\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadSeedData(path); err == nil {
		t.Fatal("expected error for user without id")
	}
}

func TestLoadSeedDataOrDefaultFallsBack(t *testing.T) {
	seed := LoadSeedDataOrDefault("")
	if len(seed.Users) == 0 || seed.Users[0].ID != "user_demo" {
		t.Fatalf("unexpected default seed: %+v", seed.Users)
	}
	if len(seed.Robots) == 0 || seed.Robots[0].UserID != "user_demo" {
		t.Fatalf("default robot should belong to demo user: %+v", seed.Robots)
	}
}
