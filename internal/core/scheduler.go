package core

// scheduler.go provides background job scheduling for maintenance tasks.
//
// Two jobs run for the lifetime of the process:
//  1. Session janitor: closes sessions idle past the configured timeout.
//     Dirty sessions are never reaped, so unsaved work survives.
//  2. Audit archiver: moves old entries from audit_log to audit_log_archive
//     (hot -> cold) and purges very old archives per the retention policy.
//
// Both jobs are context-aware for graceful shutdown, log their progress, and
// never fail the application when an individual run errors.

import (
	"context"
	"log/slog"
	"time"
)

// StartSessionJanitor starts a background goroutine that periodically sweeps
// idle sessions. It sweeps immediately on start, then every configured
// interval until ctx is cancelled.
func (s *Service) StartSessionJanitor(ctx context.Context) {
	interval := s.cfg.Editor.SessionSweepInterval
	idle := s.cfg.Editor.SessionIdleTimeout

	slog.Info("session janitor started", "sweep_interval", interval, "idle_timeout", idle)

	s.sweepIdleSessions(idle)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			if closed := s.sweepIdleSessions(idle); closed > 0 {
				slog.Info("closed idle sessions", "count", closed)
			}
		}
	}
}

// StartAuditArchiver starts a background goroutine that periodically archives
// old audit entries and purges expired archives. It runs immediately on
// start, then every configured interval, until ctx is cancelled. With no
// database pool it returns at once.
func (s *Service) StartAuditArchiver(ctx context.Context) {
	if s.pool == nil {
		slog.Debug("audit archiver not started, no database configured")
		return
	}

	cfg := s.cfg.Audit
	slog.Info("audit archiver started",
		"retention_days", cfg.RetentionDays,
		"retention_years", cfg.RetentionYears,
		"batch_size", cfg.BatchSize,
	)

	s.runArchiveJob(ctx)

	ticker := time.NewTicker(cfg.ArchiveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit archiver stopped")
			return
		case <-ticker.C:
			s.runArchiveJob(ctx)
		}
	}
}

// runArchiveJob performs one archive + purge cycle.
func (s *Service) runArchiveJob(ctx context.Context) {
	slog.Debug("archive job started")
	start := time.Now()

	archiveStart := time.Now()
	archived, err := s.ArchiveOldEntries(ctx, s.cfg.Audit.RetentionDays, s.cfg.Audit.BatchSize)
	if err != nil {
		slog.Error("archive failed", "error", err)
	} else {
		slog.Info("archived audit entries",
			"entries_archived", archived,
			"duration_ms", time.Since(archiveStart).Milliseconds(),
		)
	}

	purgeStart := time.Now()
	purged, err := s.purgeOldArchives(ctx, s.cfg.Audit.RetentionYears)
	if err != nil {
		slog.Error("purge failed", "error", err)
	} else {
		slog.Info("purged old archive entries",
			"entries_purged", purged,
			"duration_ms", time.Since(purgeStart).Milliseconds(),
		)
	}

	slog.Info("archive job completed", "duration_ms", time.Since(start).Milliseconds())
}
