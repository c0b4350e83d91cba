// Package config loads fieldgate configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"github.com/seedbotics/fieldgate/internal/apperr"
)

// Auth modes select the identity resolver.
const (
	AuthModeDemo = "demo"
	AuthModeJWT  = "jwt"
)

// Backend selectors for pluggable collaborators.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMock   = "mock"
	BackendCloud  = "cloud"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `env:"FIELDGATE_HOST,default=0.0.0.0"`
	Port            int           `env:"FIELDGATE_PORT,default=8080"`
	ReadTimeout     time.Duration `env:"FIELDGATE_READ_TIMEOUT,default=15s"`
	WriteTimeout    time.Duration `env:"FIELDGATE_WRITE_TIMEOUT,default=30s"`
	IdleTimeout     time.Duration `env:"FIELDGATE_IDLE_TIMEOUT,default=60s"`
	ShutdownTimeout time.Duration `env:"FIELDGATE_SHUTDOWN_TIMEOUT,default=10s"`
}

// AuthConfig selects and parameterizes the identity resolver.
type AuthConfig struct {
	Mode      string        `env:"FIELDGATE_AUTH_MODE,default=demo"`
	JWTSecret string        `env:"FIELDGATE_JWT_SECRET,default="`
	TokenTTL  time.Duration `env:"FIELDGATE_TOKEN_TTL,default=24h"`
}

// StorageConfig selects the data store backend.
type StorageConfig struct {
	Backend       string `env:"FIELDGATE_STORAGE_BACKEND,default=memory"`
	RedisAddr     string `env:"FIELDGATE_REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"FIELDGATE_REDIS_PASSWORD,default="`
	RedisDB       int    `env:"FIELDGATE_REDIS_DB,default=0"`
}

// DeviceLinkConfig selects the robot communication backend.
type DeviceLinkConfig struct {
	Backend  string `env:"FIELDGATE_DEVICELINK_BACKEND,default=mock"`
	Endpoint string `env:"FIELDGATE_DEVICELINK_ENDPOINT,default="`
}

// ObjectStoreConfig selects the blob storage backend.
type ObjectStoreConfig struct {
	Backend string `env:"FIELDGATE_OBJECTSTORE_BACKEND,default=memory"`
	Bucket  string `env:"FIELDGATE_OBJECTSTORE_BUCKET,default="`
	BaseURL string `env:"FIELDGATE_OBJECTSTORE_BASE_URL,default="`
}

// RateLimitConfig bounds per-client request rates.
type RateLimitConfig struct {
	Enabled bool    `env:"FIELDGATE_RATELIMIT_ENABLED,default=true"`
	RPS     float64 `env:"FIELDGATE_RATELIMIT_RPS,default=10"`
	Burst   int     `env:"FIELDGATE_RATELIMIT_BURST,default=20"`
}

// CORSConfig controls cross-origin access for the mobile app shell.
type CORSConfig struct {
	AllowedOrigins string `env:"FIELDGATE_CORS_ORIGINS,default=*"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level  string `env:"FIELDGATE_LOG_LEVEL,default=info"`
	Format string `env:"FIELDGATE_LOG_FORMAT,default=json"`
	Output string `env:"FIELDGATE_LOG_OUTPUT,default=stdout"`
}

// SeedConfig controls demo-data seeding at startup.
type SeedConfig struct {
	Enabled bool   `env:"FIELDGATE_SEED_ENABLED,default=true"`
	File    string `env:"FIELDGATE_SEED_FILE,default="`
}

// Config is the full fieldgate configuration.
type Config struct {
	Server      ServerConfig
	Auth        AuthConfig
	Storage     StorageConfig
	DeviceLink  DeviceLinkConfig
	ObjectStore ObjectStoreConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Logging     LoggingConfig
	Seed        SeedConfig
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, apperr.Configuration("decode environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that envdecode cannot express.
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeDemo:
	case AuthModeJWT:
		if strings.TrimSpace(c.JWTSecretValue()) == "" {
			return apperr.Configuration("FIELDGATE_JWT_SECRET is required when FIELDGATE_AUTH_MODE=jwt")
		}
	default:
		return apperr.Configuration("unknown auth mode: " + c.Auth.Mode)
	}

	switch c.Storage.Backend {
	case BackendMemory, BackendRedis:
	default:
		return apperr.Configuration("unknown storage backend: " + c.Storage.Backend)
	}

	switch c.DeviceLink.Backend {
	case BackendMock, BackendCloud:
	default:
		return apperr.Configuration("unknown device link backend: " + c.DeviceLink.Backend)
	}

	switch c.ObjectStore.Backend {
	case BackendMemory, BackendCloud:
	default:
		return apperr.Configuration("unknown object store backend: " + c.ObjectStore.Backend)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperr.Configuration("server port out of range")
	}
	return nil
}

// JWTSecretValue returns the configured signing secret.
func (c *Config) JWTSecretValue() string { return c.Auth.JWTSecret }

// Origins splits the configured CORS origin list.
func (c *CORSConfig) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
