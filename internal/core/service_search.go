package core

import (
	"context"
	"fmt"

	"github.com/celled/celled/internal/engine"
)

// Search sets the query and scans the grid. The summary includes the match
// count and the cursor parked on the first hit.
func (s *Service) Search(sessionID string, req SearchRequest) (*SearchSummary, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	sess.editor.SetQuery(req.Query, req.Options)
	if _, err := sess.editor.PerformSearch(); err != nil {
		return nil, err
	}
	return searchSummary(sess.editor), nil
}

// NextMatch advances the match cursor, wrapping at the end.
func (s *Service) NextMatch(sessionID string) (*engine.CellRef, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	return sess.editor.NextMatch(), nil
}

// PreviousMatch steps the match cursor back, wrapping at the start.
func (s *Service) PreviousMatch(sessionID string) (*engine.CellRef, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	return sess.editor.PreviousMatch(), nil
}

// ReplaceCurrent replaces the current match and returns the refreshed
// search summary.
func (s *Service) ReplaceCurrent(ctx context.Context, sessionID, replacement string) (bool, *SearchSummary, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return false, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	replaced, err := sess.editor.ReplaceCurrent(replacement)
	if err != nil {
		return false, nil, err
	}
	if replaced {
		s.audit(ctx, auditParams{
			Action:       ActionReplace,
			Path:         sess.Path,
			SessionID:    sess.ID,
			NewValue:     replacement,
			RowsAffected: 1,
			Description:  "Replace current match",
		})
	}
	return replaced, searchSummary(sess.editor), nil
}

// ReplaceAll replaces every match in one history entry and returns how many
// cells changed.
func (s *Service) ReplaceAll(ctx context.Context, sessionID, replacement string) (int, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	n, err := sess.editor.ReplaceAllMatches(replacement)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.audit(ctx, auditParams{
			Action:       ActionReplaceAll,
			Path:         sess.Path,
			SessionID:    sess.ID,
			NewValue:     replacement,
			RowsAffected: n,
			Description:  fmt.Sprintf("Replace all (%d cells)", n),
		})
	}
	return n, nil
}

// ClearSearch drops the query, matches and cursor.
func (s *Service) ClearSearch(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	sess.editor.ClearSearch()
	return nil
}
