/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the deduction engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment, then apply flags
  2. Open the SQLite, PostgreSQL or in-memory store
  3. Seed statutory presets and the optional YAML seed file
  4. Create API handler, payroll runner and metrics
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides APP_ADDR)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  See config/config.go. The main ones:
  DB_DRIVER=sqlite|postgres|memory, DB_PATH, PG_DSN
  LOG_FORMAT=text|json, LOG_LEVEL
  SEED_PRESETS, SEED_FILE, METRICS_ENABLED, RATE_LIMIT_PER_MINUTE

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SHUTDOWN_TIMEOUT)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/deductions.db"

  # Run against Postgres with JSON logs
  DB_DRIVER=postgres PG_DSN=postgres://localhost/payroll LOG_FORMAT=json ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/: Storage backends
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/deduction-engine/api"
	"github.com/warp/deduction-engine/config"
	"github.com/warp/deduction-engine/factory"
	"github.com/warp/deduction-engine/logging"
	"github.com/warp/deduction-engine/observability"
	"github.com/warp/deduction-engine/payroll"
	"github.com/warp/deduction-engine/store/memory"
	"github.com/warp/deduction-engine/store/postgres"
	"github.com/warp/deduction-engine/store/sqlite"
)

// closableStore is an api.Store that owns a database connection.
type closableStore interface {
	api.Store
	Close() error
}

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides APP_ADDR)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.AppAddr = fmt.Sprintf(":%d", *port)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	if err := seed(ctx, cfg, store, logger); err != nil {
		return err
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	runner := payroll.NewRunner(cfg.RunConcurrency, logger)
	handler := api.NewHandler(store, runner, metrics, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MetricsEnabled:     cfg.MetricsEnabled,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.AppAddr),
			slog.String("db_driver", cfg.DBDriver),
			slog.Bool("metrics", cfg.MetricsEnabled),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (closableStore, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.PGDSN)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return sqlite.New(cfg.DBPath)
	}
}

// seed loads the YAML seed file, if any, then the statutory presets when the
// store still has no configs.
func seed(ctx context.Context, cfg *config.Config, store api.Store, logger *slog.Logger) error {
	if cfg.SeedFile != "" {
		data, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to read seed file: %w", err)
		}
		configs, warnings, err := factory.NewConfigFactory().ParseYAML(data)
		if err != nil {
			return fmt.Errorf("failed to parse seed file %s: %w", cfg.SeedFile, err)
		}
		for _, w := range warnings {
			logger.Warn("seed config warning",
				slog.String("config_id", string(w.ConfigID)),
				slog.String("field", w.Field),
				slog.String("code", w.Code),
				slog.String("message", w.Message),
			)
		}
		n, err := api.SeedConfigs(ctx, store, configs)
		if err != nil {
			return err
		}
		logger.Info("seed file loaded", slog.String("path", cfg.SeedFile), slog.Int("configs", n))
	}

	if cfg.SeedPresets {
		n, err := api.SeedDefaults(ctx, store)
		if err != nil {
			return fmt.Errorf("failed to seed presets: %w", err)
		}
		if n > 0 {
			logger.Info("statutory presets seeded", slog.Int("configs", n))
		}
	}
	return nil
}
