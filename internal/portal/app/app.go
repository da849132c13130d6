package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/fieldops/internal/portal/http"
	"github.com/aussiebroadwan/fieldops/internal/portal/identity"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/internal/portal/telemetry"
	"github.com/aussiebroadwan/fieldops/pkg/cryptox"
	"github.com/aussiebroadwan/fieldops/pkg/httpx"
	"github.com/aussiebroadwan/fieldops/pkg/jwtx"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

// BuildVersion is overwritten at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the portal with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	provider identity.Provider
	metrics  *telemetry.Metrics

	// Services
	sessionService      *service.SessionService
	accessService       *service.AccessService
	claimService        *service.ClaimService
	rolesService        *service.RolesService
	inviteService       *service.InviteService
	profileService      *service.ProfileService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger for cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "fieldops-portal",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg:     cfg,
		logger:  NewLogger(cfg),
		metrics: telemetry.NewMetrics(),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	provider, err := identity.NewOIDCProvider(ctx, cfg.OIDC)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}
	app.provider = provider

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("portal starting",
		slog.Int("port", app.cfg.Port),
		slog.String("base_url", app.cfg.BaseURL),
		slog.String("database", app.cfg.DatabaseDriver),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down portal...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("error", err))
		return err
	}

	app.logger.Info("portal stopped")
	return nil
}

// Handler returns the routed HTTP handler without starting a listener.
func (app *Application) Handler() http.Handler { return app.router }

// Close releases the store of an application that was never Run.
func (app *Application) Close() error { return app.db.Close() }

// initDatabase opens the store, applies migrations and seeds the role catalog
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully")

	created, err := SeedCatalog(ctx, db, app.cfg.RoleCatalog)
	if err != nil {
		_ = db.Close()
		return err
	}
	app.logger.Info("role catalog seeded", slog.Int("created", created))

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	resolver, err := service.NewRedirectResolver(app.cfg.BaseURL, app.cfg.AllowedHosts, app.cfg.Local())
	if err != nil {
		return fmt.Errorf("failed to build redirect resolver: %w", err)
	}

	app.sessionService = &service.SessionService{Store: app.db, TTL: app.cfg.SessionTTL}
	app.accessService = service.NewAccessService(
		app.db,
		app.cfg.PermissionCacheSize,
		app.cfg.PermissionCacheTTL,
		app.metrics,
	)
	app.claimService = &service.ClaimService{
		Store:     app.db,
		Provider:  app.provider,
		Sessions:  app.sessionService,
		Redirects: resolver,
		Metrics:   app.metrics,
	}
	app.rolesService = &service.RolesService{Store: app.db}
	app.inviteService = &service.InviteService{Store: app.db}
	app.profileService = &service.ProfileService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.metrics,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	key, err := cryptox.DeriveKey([]byte(app.cfg.Secret), "login-state", 32)
	if err != nil {
		return fmt.Errorf("PORTAL_SECRET: %w", err)
	}
	state, err := jwtx.NewStateSigner(key, app.cfg.BaseURL, jwtx.DefaultStateTTL)
	if err != nil {
		return fmt.Errorf("failed to build login state signer: %w", err)
	}

	router := httpapi.NewRouter(BuildVersion, app.db, app.metrics, app.logger)
	router.Cookies = httpx.CookieConfig{Path: "/", Secure: app.cfg.SecureCookies()}
	router.StateCodec = state

	// Wire services to router
	router.ClaimService = app.claimService
	router.SessionService = app.sessionService
	router.AccessService = app.accessService
	router.RolesService = app.rolesService
	router.InviteService = app.inviteService
	router.ProfileService = app.profileService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}

// SeedCatalog loads the catalog at path (or the embedded default) and seeds it.
func SeedCatalog(ctx context.Context, st store.Store, path string) (int, error) {
	var (
		catalog service.Catalog
		err     error
	)
	if path != "" {
		catalog, err = service.LoadCatalog(path)
	} else {
		catalog, err = service.DefaultCatalog()
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load role catalog: %w", err)
	}

	created, err := (&service.SeedService{Store: st}).Seed(ctx, catalog)
	if err != nil {
		return 0, fmt.Errorf("failed to seed role catalog: %w", err)
	}
	return created, nil
}
