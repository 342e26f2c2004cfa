package core

import (
	"context"
	"fmt"

	"github.com/celled/celled/internal/logging"
	"github.com/celled/celled/internal/script"
)

// ExecuteScript starts a script run against a snapshot of the session grid
// and returns its execution ID. The run is asynchronous; follow it with
// ScriptProgress or SubscribeScript and collect the outcome via ScriptResult.
func (s *Service) ExecuteScript(ctx context.Context, sessionID, content string, typ script.Type, prompt string) (string, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return "", err
	}
	if !typ.Valid() {
		return "", fmt.Errorf("unknown script type %q", typ)
	}

	sess.mu.Lock()
	grid := sess.editor.Grid()
	sess.touch()
	sess.mu.Unlock()

	// The executor clones the grid before binding it into the interpreter,
	// so the snapshot can safely leave the lock.
	execID, err := s.executor.Execute(ctx, script.New(content, typ, prompt), grid)
	if err != nil {
		return "", err
	}

	logging.WithFields(ctx, "execution_id", execID, "session_id", sessionID).
		Info("script execution started", "type", string(typ))
	return execID, nil
}

// ScriptProgress returns the current progress snapshot for an execution.
func (s *Service) ScriptProgress(execID string) (script.Progress, error) {
	return s.executor.GetProgress(execID)
}

// ScriptResult blocks until the execution finishes and returns its outcome.
func (s *Service) ScriptResult(ctx context.Context, execID string) (*script.Result, error) {
	return s.executor.GetResult(ctx, execID)
}

// SubscribeScript registers a progress listener for an execution. The channel
// closes when the run finishes.
func (s *Service) SubscribeScript(execID string) (<-chan script.Progress, error) {
	return s.executor.Subscribe(execID)
}

// CancelScript aborts a pending or running execution.
func (s *Service) CancelScript(execID string) error {
	return s.executor.Cancel(execID)
}

// RemoveScript cancels an execution if still running and discards its state.
func (s *Service) RemoveScript(execID string) {
	s.executor.Remove(execID)
}

// ApplyScript takes a completed transformation execution and applies its
// change list to the session grid as one undoable replacement. The execution
// is removed afterwards; applying twice is an error.
func (s *Service) ApplyScript(ctx context.Context, sessionID, execID string) (*GridState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := s.executor.GetResult(ctx, execID)
	if err != nil {
		return nil, err
	}
	if res.Status != script.StatusCompleted {
		return nil, fmt.Errorf("execution %s is %s, not completed", execID, res.Status)
	}
	if res.Type != script.TypeTransformation {
		return nil, fmt.Errorf("execution %s is an %s script, only transformations can be applied", execID, res.Type)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	next, err := script.ApplyChanges(sess.editor.Grid(), res.Changes)
	if err != nil {
		return nil, fmt.Errorf("apply script changes: %w", err)
	}

	desc := "Apply script"
	sess.editor.ReplaceGrid(next, desc)
	s.executor.Remove(execID)

	logging.WithFields(ctx, "execution_id", execID, "session_id", sessionID).
		Info("script changes applied", "changes", len(res.Changes))

	s.audit(ctx, auditParams{
		Action:       ActionScriptApply,
		Path:         sess.Path,
		SessionID:    sess.ID,
		RowsAffected: len(res.Changes),
		Description:  fmt.Sprintf("Applied script (%d changes)", len(res.Changes)),
	})

	return s.buildState(sess), nil
}
