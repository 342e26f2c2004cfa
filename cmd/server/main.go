package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/celled/celled/internal/config"
	"github.com/celled/celled/internal/core"
	"github.com/celled/celled/internal/logging"
	"github.com/celled/celled/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_dir", cfg.Editor.DataDir,
		"max_sessions", cfg.Editor.MaxSessions,
		"script_max_concurrent", cfg.Script.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"audit_enabled", cfg.Database.Enabled(),
	)

	ctx := context.Background()

	// The database backs the audit trail only. Without one the editor runs
	// fully in memory and audit endpoints report the trail as disabled.
	var pool *pgxpool.Pool
	if cfg.Database.Enabled() {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database")
		}
	} else {
		slog.Info("no database configured, audit trail disabled")
	}

	// Create service with config
	service, err := core.NewService(cfg, pool)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	// Create audit tables on first run
	if err := service.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure audit schema", "error", err)
		os.Exit(1)
	}

	// Create server with config
	server := web.NewServer(cfg, service)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	// Reap idle sessions and rotate audit entries in the background
	go service.StartSessionJanitor(jobCtx)
	go service.StartAuditArchiver(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for running scripts to finish (with timeout)
		status := service.Executor().Limiter().Status()
		if status.Active > 0 {
			slog.Info("waiting for scripts to complete", "active", status.Active)
			if err := service.Executor().Drain(shutdownCtx); err != nil {
				slog.Warn("scripts did not complete in time", "error", err)
			} else {
				slog.Info("all scripts completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
