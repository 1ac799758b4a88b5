package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/config"
	"github.com/pitchdata/pitchdata-api/internal/domain"
	"github.com/pitchdata/pitchdata-api/internal/platform/logger"
	"github.com/pitchdata/pitchdata-api/internal/platform/metrics"
	"github.com/pitchdata/pitchdata-api/internal/platform/postgres"
	"github.com/pitchdata/pitchdata-api/internal/schema"
	"github.com/pitchdata/pitchdata-api/internal/store"
)

// application holds the wired dependencies for one server process.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	db       *sql.DB
	registry *schema.Registry
	metrics  *metrics.Metrics

	leagueStore  store.LeagueStore
	seasonStore  store.SeasonStore
	teamStore    store.TeamStore
	playerStore  store.PlayerStore
	fixtureStore store.FixtureStore
}

// newApplication builds the application from configuration. Every
// dependency is created here so handlers receive concrete, ready-to-use
// stores.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	return &application{
		config:       cfg,
		logger:       appLogger,
		db:           db,
		registry:     domain.BuildRegistry(),
		metrics:      metrics.New(),
		leagueStore:  postgres.NewPostgresLeagueStore(db, cfg.Database.PoolAcquireTimeout),
		seasonStore:  postgres.NewPostgresSeasonStore(db, cfg.Database.PoolAcquireTimeout),
		teamStore:    postgres.NewPostgresTeamStore(db, cfg.Database.PoolAcquireTimeout),
		playerStore:  postgres.NewPostgresPlayerStore(db, cfg.Database.PoolAcquireTimeout),
		fixtureStore: postgres.NewPostgresFixtureStore(db, cfg.Database.PoolAcquireTimeout),
	}, nil
}

// run applies pending migrations and serves HTTP until interrupted.
func (app *application) run() error {
	if err := app.migrateUp(context.Background()); err != nil {
		return err
	}
	return app.startHTTPServer(context.Background(), app.setupRouter())
}

// startHTTPServer starts the HTTP server with graceful shutdown support.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("server failed", slog.String("error", err.Error()))
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("shutting down server")
	case <-serverCtx.Done():
		app.logger.Info("server context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}

// cleanup releases process-wide resources. Safe to call more than once.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
		app.db = nil
	}
}
