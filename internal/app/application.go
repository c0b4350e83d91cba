// Package app wires configuration, storage, collaborators and services into a
// running fieldgate instance and manages the HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seedbotics/fieldgate/internal/config"
	"github.com/seedbotics/fieldgate/internal/devicelink"
	"github.com/seedbotics/fieldgate/internal/httpapi"
	"github.com/seedbotics/fieldgate/internal/identity"
	"github.com/seedbotics/fieldgate/internal/metrics"
	"github.com/seedbotics/fieldgate/internal/middleware"
	"github.com/seedbotics/fieldgate/internal/objectstore"
	"github.com/seedbotics/fieldgate/internal/services/alerts"
	"github.com/seedbotics/fieldgate/internal/services/auth"
	"github.com/seedbotics/fieldgate/internal/services/maintenance"
	"github.com/seedbotics/fieldgate/internal/services/missions"
	"github.com/seedbotics/fieldgate/internal/services/reports"
	"github.com/seedbotics/fieldgate/internal/services/robots"
	"github.com/seedbotics/fieldgate/internal/services/sessions"
	"github.com/seedbotics/fieldgate/internal/storage"
	"github.com/seedbotics/fieldgate/internal/storage/memory"
	"github.com/seedbotics/fieldgate/internal/storage/redis"
	"github.com/seedbotics/fieldgate/pkg/logger"
)

// Application holds the wired fieldgate instance.
type Application struct {
	cfg     *config.Config
	log     *logger.Logger
	store   storage.Store
	closers []io.Closer
	handler http.Handler
	server  *http.Server

	stopLimiterCleanup func()
}

// New builds a fully wired application from configuration. The context bounds
// startup work such as the Redis connection check and demo seeding.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithField("component", "app")

	a := &Application{cfg: cfg, log: log}

	store, err := a.buildStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("configure store: %w", err)
	}
	a.store = store

	link := a.buildLink()
	objects := a.buildObjects()
	resolver, issuer := a.buildAuth()

	if cfg.Seed.Enabled {
		data := config.LoadSeedDataOrDefault(cfg.Seed.File)
		if err := seed(ctx, store, data, log); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	svc := httpapi.Services{
		Auth:        auth.New(store, issuer, log),
		Robots:      robots.New(store, link, log),
		Alerts:      alerts.New(store, log),
		Sessions:    sessions.New(store, log),
		Missions:    missions.New(store, store, log),
		Maintenance: maintenance.New(store, store, log),
		Reports:     reports.New(store, objects, log),
	}

	a.handler = a.buildChain(httpapi.NewHandler(svc, log), resolver)
	a.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      a.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (a *Application) Handler() http.Handler { return a.handler }

// Run starts the HTTP server and blocks until the context is cancelled or the
// server fails.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Infof("fieldgate listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains the HTTP server and releases held resources.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.stopLimiterCleanup != nil {
		a.stopLimiterCleanup()
	}

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.WithError(err).Warn("error closing resource")
		}
	}
	return nil
}

func (a *Application) buildStore(ctx context.Context) (storage.Store, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendRedis:
		store, err := redis.New(ctx, a.cfg.Storage.RedisAddr, a.cfg.Storage.RedisPassword, a.cfg.Storage.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		a.log.WithField("addr", a.cfg.Storage.RedisAddr).Info("using redis store")
		return store, nil
	default:
		a.log.Info("using in-memory store")
		return memory.New(), nil
	}
}

func (a *Application) buildLink() devicelink.Link {
	if a.cfg.DeviceLink.Backend == config.BackendCloud {
		a.log.WithField("endpoint", a.cfg.DeviceLink.Endpoint).Info("using cloud device link")
		return devicelink.NewCloud(a.cfg.DeviceLink.Endpoint)
	}
	return devicelink.NewMock(a.log.WithField("component", "devicelink"))
}

func (a *Application) buildObjects() objectstore.Store {
	if a.cfg.ObjectStore.Backend == config.BackendCloud {
		a.log.WithField("bucket", a.cfg.ObjectStore.Bucket).Info("using cloud object store")
		return objectstore.NewCloud(a.cfg.ObjectStore.Bucket)
	}
	return objectstore.NewMemory(a.cfg.ObjectStore.BaseURL)
}

func (a *Application) buildAuth() (identity.Resolver, identity.Issuer) {
	if a.cfg.Auth.Mode == config.AuthModeJWT {
		mgr := identity.NewJWTManager(a.cfg.JWTSecretValue(), a.cfg.Auth.TokenTTL)
		return mgr, mgr
	}
	a.log.Warn("demo auth mode enabled; do not use in production")
	return identity.NewDemoResolver(a.store), identity.DemoIssuer{}
}

// buildChain assembles the middleware stack. Identity resolution runs before
// rate limiting so authenticated callers are keyed by user id rather than IP.
func (a *Application) buildChain(handler http.Handler, resolver identity.Resolver) http.Handler {
	chain := handler

	if a.cfg.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(a.cfg.RateLimit.RPS, a.cfg.RateLimit.Burst, a.log)
		a.stopLimiterCleanup = rl.StartCleanup(10 * time.Minute)
		chain = rl.Handler(chain)
	}

	chain = middleware.NewIdentityMiddleware(resolver, a.log).Handler(chain)
	chain = middleware.NewCORSMiddleware(a.cfg.CORS.Origins()).Handler(chain)
	chain = metrics.InstrumentHandler(chain)
	chain = middleware.NewTracingMiddleware(a.log.WithField("component", "http")).Handler(chain)

	return chain
}
