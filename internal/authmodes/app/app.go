package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/authmodes/internal/authmodes/http"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store/drivers/postgres"
	redisdrv "github.com/aussiebroadwan/authmodes/internal/authmodes/store/drivers/redis"
	"github.com/aussiebroadwan/authmodes/internal/authmodes/store/drivers/sqlite"
	"github.com/aussiebroadwan/authmodes/pkg/cryptox"
	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	sessions store.Sessions
	redis    *redis.Client // nil unless the redis session backend is in use

	// Services
	accounts            *service.Accounts
	dispatcher          *service.Dispatcher
	housekeepingService *service.HousekeepingService // nil for the redis backend

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "authmodes",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initSessions(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

	app.logger.Info("authmodes starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"sessions", app.cfg.SessionBackend,
	)
	app.warnMissingSecrets()

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authmodes...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("authmodes stopped")
	return nil
}

func (app *Application) closeStores() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// OpenStore opens the configured database without migrating it.
func OpenStore(cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		db, err := postgres.NewStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return db, nil
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// OpenMigratedStore opens the configured database and applies migrations.
func OpenMigratedStore(ctx context.Context, cfg Config) (store.Store, error) {
	db, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// NewHasher loads (or creates) the pepper and returns the password hasher.
func NewHasher(cfg Config) (*cryptox.Argon2, error) {
	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	return cryptox.NewArgon2(pepper), nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := OpenMigratedStore(context.Background(), app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initSessions picks the session backend. Redis must answer a ping at
// startup; after that readiness keeps probing it.
func (app *Application) initSessions() error {
	if app.cfg.SessionBackend != SessionBackendRedis {
		app.sessions = app.db.Sessions()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	sessions := redisdrv.NewSessions(client, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sessions.Ping(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
	}

	app.redis = client
	app.sessions = sessions
	app.logger.Info("redis session backend connected", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes the account service and the three strategies
func (app *Application) initServices() error {
	hasher, err := NewHasher(app.cfg)
	if err != nil {
		return err
	}

	app.accounts = service.NewAccounts(app.db, hasher)
	app.dispatcher = service.NewDispatcher(
		service.NewStatelessStrategy(
			app.accounts,
			jwtx.NewSignerHS256(app.cfg.StatelessSecret),
			app.cfg.StatelessTTL,
		),
		service.NewHybridStrategy(
			app.accounts,
			app.db,
			jwtx.NewSignerHS256(app.cfg.AccessSecret),
			jwtx.NewSignerHS256(app.cfg.RefreshSecret),
			app.cfg.AccessTTL,
			app.cfg.RefreshTTL,
		),
		app.sessionStrategy(),
	)

	// Redis expires session keys itself
	if app.cfg.SessionBackend == SessionBackendSQL {
		app.housekeepingService = service.NewHousekeepingService(
			app.sessions,
			app.logger,
			app.cfg.HousekeepingInterval,
		)
	}
	return nil
}

func (app *Application) sessionStrategy() *service.SessionStrategy {
	if app.cfg.SessionBackend == SessionBackendSQL {
		return service.NewSQLSessionStrategy(app.accounts, app.cfg.SessionTTL)
	}
	return service.NewSessionStrategy(app.accounts, app.sessions, app.cfg.SessionTTL)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	var sessionsPinger httpapi.Pinger = app.db
	if p, ok := app.sessions.(httpapi.Pinger); ok {
		sessionsPinger = p
	}

	router := httpapi.NewRouter(
		app.dispatcher,
		app.accounts,
		BuildVersion,
		app.logger,
		httpapi.Options{
			SecureCookies: app.cfg.SecureCookies(),
			CORSOrigins:   app.cfg.CORSOrigins,
			Database:      app.db,
			Sessions:      sessionsPinger,
		},
	)
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func (app *Application) warnMissingSecrets() {
	secrets := []struct {
		name, value string
	}{
		{"AUTH_STATELESS_SECRET", app.cfg.StatelessSecret},
		{"AUTH_ACCESS_SECRET", app.cfg.AccessSecret},
		{"AUTH_REFRESH_SECRET", app.cfg.RefreshSecret},
	}
	for _, s := range secrets {
		if s.value == "" {
			app.logger.Warn("signing secret not configured, dependent operations will fail", "var", s.name)
		}
	}
}
