package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/celled/celled/internal/clip"
	"github.com/celled/celled/internal/engine"
)

// UpdateCell writes one cell value.
func (s *Service) UpdateCell(ctx context.Context, sessionID string, row, col int, value string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	old, _ := sess.editor.Grid().Cell(row, col)
	if err := sess.editor.UpdateCell(row, col, value); err != nil {
		return err
	}

	s.audit(ctx, auditParams{
		Action:    ActionCellEdit,
		Path:      sess.Path,
		SessionID: sess.ID,
		Row:       row,
		Col:       col,
		OldValue:  old,
		NewValue:  value,
	})
	return nil
}

// SetSelection sets the active selection by kind.
func (s *Service) SetSelection(sessionID string, req SelectionRequest) (*SelectionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	ed := sess.editor
	switch req.Kind {
	case "cell":
		ed.SelectCell(req.Row, req.Col)
	case "range":
		ed.SelectRange(req.AnchorRow, req.AnchorCol, req.FocusRow, req.FocusCol)
	case "row":
		ed.SelectRow(req.Index)
	case "column":
		ed.SelectColumn(req.Index)
	case "all":
		ed.SelectAll()
	case "none":
		ed.ClearSelection()
	default:
		return nil, fmt.Errorf("unknown selection kind %q", req.Kind)
	}
	return selectionInfo(ed.Selection()), nil
}

// ExtendSelection grows the selection from its anchor to (row, col).
func (s *Service) ExtendSelection(sessionID string, row, col int) (*SelectionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	sess.editor.ExtendSelection(row, col)
	return selectionInfo(sess.editor.Selection()), nil
}

// Copy reads the selection into the engine clipboard. With system set, the
// block is mirrored to the OS clipboard best-effort.
func (s *Service) Copy(sessionID string, system bool) (*ClipboardResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if !sess.editor.CopySelection() {
		return &ClipboardResult{}, nil
	}
	block := sess.editor.Clipboard()
	if system {
		writeSystemClipboard(block)
	}
	return &ClipboardResult{Applied: true, Rows: len(block), Cols: blockWidth(block)}, nil
}

// Cut copies then blanks the selection.
func (s *Service) Cut(ctx context.Context, sessionID string, system bool) (*ClipboardResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if !sess.editor.CutSelection() {
		return &ClipboardResult{}, nil
	}
	block := sess.editor.Clipboard()
	if system {
		writeSystemClipboard(block)
	}

	s.audit(ctx, auditParams{
		Action:       ActionClearCells,
		Path:         sess.Path,
		SessionID:    sess.ID,
		RowsAffected: len(block),
		Description:  "Cut selection",
	})
	return &ClipboardResult{Applied: true, Rows: len(block), Cols: blockWidth(block)}, nil
}

// Paste anchors the clipboard at (row, col), or at the selection's top-left
// when row is negative. With system set, the OS clipboard is read first and,
// when non-empty, replaces the engine clipboard.
func (s *Service) Paste(ctx context.Context, sessionID string, row, col int, system bool) (*ClipboardResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if system {
		if block, err := clip.ReadBlock(); err != nil {
			slog.Warn("system clipboard read failed", "error", err)
		} else if len(block) > 0 {
			sess.editor.SetClipboard(block)
		}
	}

	var applied bool
	if row < 0 {
		applied = sess.editor.Paste()
	} else {
		applied = sess.editor.PasteAt(row, col)
	}
	if !applied {
		return &ClipboardResult{}, nil
	}

	block := sess.editor.Clipboard()
	s.audit(ctx, auditParams{
		Action:       ActionPaste,
		Path:         sess.Path,
		SessionID:    sess.ID,
		RowsAffected: len(block),
		Description:  "Paste",
	})
	return &ClipboardResult{Applied: true, Rows: len(block), Cols: blockWidth(block)}, nil
}

// ClearCells blanks the selection.
func (s *Service) ClearCells(ctx context.Context, sessionID string) (bool, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if !sess.editor.ClearCells() {
		return false, nil
	}

	s.audit(ctx, auditParams{
		Action:      ActionClearCells,
		Path:        sess.Path,
		SessionID:   sess.ID,
		Description: "Clear cells",
	})
	return true, nil
}

// InsertRow inserts an empty row above or below index.
func (s *Service) InsertRow(ctx context.Context, sessionID, position string, index int) error {
	pos, err := rowPosition(position)
	if err != nil {
		return err
	}
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if err := sess.editor.InsertRow(pos, index); err != nil {
		return err
	}

	s.audit(ctx, auditParams{
		Action:       ActionRowInsert,
		Path:         sess.Path,
		SessionID:    sess.ID,
		Row:          index,
		RowsAffected: 1,
		Description:  fmt.Sprintf("Insert row %s %d", position, index),
	})
	return nil
}

// DeleteRow removes the row at index.
func (s *Service) DeleteRow(ctx context.Context, sessionID string, index int) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if err := sess.editor.DeleteRow(index); err != nil {
		return err
	}

	s.audit(ctx, auditParams{
		Action:       ActionRowDelete,
		Path:         sess.Path,
		SessionID:    sess.ID,
		Row:          index,
		RowsAffected: 1,
		Description:  fmt.Sprintf("Delete row %d", index),
	})
	return nil
}

// DuplicateRow copies the row at index in place.
func (s *Service) DuplicateRow(ctx context.Context, sessionID string, index int) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if err := sess.editor.DuplicateRow(index); err != nil {
		return err
	}

	s.audit(ctx, auditParams{
		Action:       ActionRowDuplicate,
		Path:         sess.Path,
		SessionID:    sess.ID,
		Row:          index,
		RowsAffected: 1,
		Description:  fmt.Sprintf("Duplicate row %d", index),
	})
	return nil
}

// InsertColumn inserts an empty column before or after index and returns
// its auto-generated name.
func (s *Service) InsertColumn(ctx context.Context, sessionID, position string, index int) (string, error) {
	pos, err := columnPosition(position)
	if err != nil {
		return "", err
	}
	sess, err := s.session(sessionID)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	name, err := sess.editor.InsertColumn(pos, index)
	if err != nil {
		return "", err
	}

	s.audit(ctx, auditParams{
		Action:      ActionColumnInsert,
		Path:        sess.Path,
		SessionID:   sess.ID,
		Col:         index,
		ColumnName:  name,
		Description: fmt.Sprintf("Insert column %s %d", position, index),
	})
	return name, nil
}

// DeleteColumn removes the column at index.
func (s *Service) DeleteColumn(ctx context.Context, sessionID string, index int) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	name := columnName(sess.editor.Grid(), index)
	if err := sess.editor.DeleteColumn(index); err != nil {
		return err
	}

	s.audit(ctx, auditParams{
		Action:      ActionColumnDelete,
		Path:        sess.Path,
		SessionID:   sess.ID,
		Col:         index,
		ColumnName:  name,
		Description: fmt.Sprintf("Delete column %q", name),
	})
	return nil
}

// RenameColumn rewrites the header at index.
func (s *Service) RenameColumn(ctx context.Context, sessionID string, index int, name string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	old := columnName(sess.editor.Grid(), index)
	if err := sess.editor.RenameColumn(index, name); err != nil {
		return err
	}

	s.audit(ctx, auditParams{
		Action:      ActionColumnRename,
		Path:        sess.Path,
		SessionID:   sess.ID,
		Col:         index,
		ColumnName:  name,
		OldValue:    old,
		NewValue:    name,
		Description: fmt.Sprintf("Rename column %q to %q", old, name),
	})
	return nil
}

// Undo steps the history back once.
func (s *Service) Undo(ctx context.Context, sessionID string) (bool, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if !sess.editor.Undo() {
		return false, nil
	}
	s.audit(ctx, auditParams{
		Action:      ActionUndo,
		Path:        sess.Path,
		SessionID:   sess.ID,
		Description: "Undo",
	})
	return true, nil
}

// Redo steps the history forward once.
func (s *Service) Redo(ctx context.Context, sessionID string) (bool, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	if !sess.editor.Redo() {
		return false, nil
	}
	s.audit(ctx, auditParams{
		Action:      ActionRedo,
		Path:        sess.Path,
		SessionID:   sess.ID,
		Description: "Redo",
	})
	return true, nil
}

// History returns the undo log summaries and the cursor position.
func (s *Service) History(sessionID string) (*HistoryView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	return &HistoryView{
		Entries: sess.editor.HistoryEntries(),
		Cursor:  sess.editor.HistoryCursor(),
	}, nil
}

// writeSystemClipboard mirrors a block to the OS clipboard. Failures are
// logged, never fatal; headless hosts have no clipboard.
func writeSystemClipboard(block [][]string) {
	if err := clip.WriteBlock(block); err != nil {
		slog.Warn("system clipboard write failed", "error", err)
	}
}

func blockWidth(block [][]string) int {
	w := 0
	for _, line := range block {
		if len(line) > w {
			w = len(line)
		}
	}
	return w
}

func columnName(g engine.Grid, index int) string {
	if index >= 0 && index < len(g.Headers) {
		return g.Headers[index]
	}
	return ""
}

func rowPosition(position string) (engine.RowPosition, error) {
	switch position {
	case "above":
		return engine.RowAbove, nil
	case "below":
		return engine.RowBelow, nil
	default:
		return "", fmt.Errorf("unknown row position %q", position)
	}
}

func columnPosition(position string) (engine.ColumnPosition, error) {
	switch position {
	case "before":
		return engine.ColumnBefore, nil
	case "after":
		return engine.ColumnAfter, nil
	default:
		return "", fmt.Errorf("unknown column position %q", position)
	}
}
