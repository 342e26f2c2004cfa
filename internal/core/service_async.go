package core

// service_async.go runs grid computations that happen outside the engine:
// sorting and row/column moves. The work runs without the session lock so
// other requests are not blocked; a revision stamp taken before dispatch is
// compared at apply time, and a mismatch discards the result rather than
// clobbering interleaved edits.

import (
	"context"
	"log/slog"
	"time"

	"github.com/celled/celled/internal/engine"
	"github.com/celled/celled/internal/gridsort"
	"github.com/celled/celled/internal/meta"
)

// Sort reorders the grid rows by up to two columns and records one undoable
// history entry. On success the sort state is remembered and written to the
// file's metadata sidecar.
func (s *Service) Sort(ctx context.Context, sessionID string, specs []gridsort.Spec) (*SortOutcome, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.touch()
	revision := sess.editor.Revision()
	grid := sess.editor.Grid()
	sess.mu.Unlock()

	// The engine never mutates rows in place, so the snapshot stays stable
	// while we sort without the lock.
	sorted, desc, err := gridsort.Sort(ctx, grid, specs)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.editor.Revision() != revision {
		return nil, gridsort.ErrGridChanged
	}
	sess.editor.ReplaceGrid(sorted, desc)

	state := &gridsort.State{Specs: specs, AppliedAt: time.Now().UTC()}
	sess.sortState = state
	s.persistSortState(sess, state)

	s.audit(ctx, auditParams{
		Action:       ActionSort,
		Path:         sess.Path,
		SessionID:    sess.ID,
		RowsAffected: sorted.RowCount(),
		Description:  desc,
	})
	return &SortOutcome{Description: desc, Revision: sess.editor.Revision(), SortState: state}, nil
}

// MoveRow relocates one row, following the same snapshot/compare/apply
// round-trip as Sort.
func (s *Service) MoveRow(ctx context.Context, sessionID string, from, to int) (*SortOutcome, error) {
	return s.applyMove(ctx, sessionID, ActionRowMove, func(g engine.Grid) (engine.Grid, string, error) {
		return gridsort.MoveRow(g, from, to)
	})
}

// MoveColumn relocates one column together with its header.
func (s *Service) MoveColumn(ctx context.Context, sessionID string, from, to int) (*SortOutcome, error) {
	return s.applyMove(ctx, sessionID, ActionColumnMove, func(g engine.Grid) (engine.Grid, string, error) {
		return gridsort.MoveColumn(g, from, to)
	})
}

func (s *Service) applyMove(ctx context.Context, sessionID string, action AuditAction, compute func(engine.Grid) (engine.Grid, string, error)) (*SortOutcome, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.touch()
	revision := sess.editor.Revision()
	grid := sess.editor.Grid()
	sess.mu.Unlock()

	moved, desc, err := compute(grid)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.editor.Revision() != revision {
		return nil, gridsort.ErrGridChanged
	}
	sess.editor.ReplaceGrid(moved, desc)

	s.audit(ctx, auditParams{
		Action:      action,
		Path:        sess.Path,
		SessionID:   sess.ID,
		Description: desc,
	})
	return &SortOutcome{Description: desc, Revision: sess.editor.Revision(), SortState: sess.sortState}, nil
}

// persistSortState writes the sort state into the sidecar of a file-backed
// session. Best-effort; the in-memory state is authoritative until save.
// The session lock must be held.
func (s *Service) persistSortState(sess *Session, state *gridsort.State) {
	if sess.Path == "" {
		return
	}

	g := sess.editor.Grid()
	md, err := s.meta.Load(sess.Path)
	if err != nil {
		md = &meta.FileMetadata{Path: sess.Path}
	}
	md.Filename = sess.info.Filename
	md.RowCount = g.RowCount()
	md.ColumnCount = g.ColumnCount()
	md.HasHeaders = true
	if md.Delimiter == "" {
		md.Delimiter = sess.info.Delimiter
	}
	if md.Encoding == "" {
		md.Encoding = sess.info.Encoding
	}
	md.SortState = state

	if err := s.meta.Save(sess.Path, md); err != nil {
		slog.Warn("sidecar sort state save failed", "path", sess.Path, "error", err)
	}
}
