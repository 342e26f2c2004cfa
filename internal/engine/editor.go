package engine

// editor.go defines the Editor, the engine object tying the live grid,
// selection, clipboard, history log, and search state together. One Editor
// exists per open document; the zero value is not usable, construct with
// NewEditor.

import "errors"

// ErrOutOfRange is returned by mutations addressing a row or column outside
// the grid.
var ErrOutOfRange = errors.New("index out of range")

// Editor holds the full editing state for one document.
//
// Editor is not safe for concurrent use. All methods are synchronous and
// non-blocking; the caller (one logical writer) serializes access.
type Editor struct {
	grid    Grid
	sel     Selection
	clip    [][]string
	history historyLog
	search  searchState

	dirty    bool
	revision uint64
}

// NewEditor creates an Editor over the given grid with the default history
// limit.
func NewEditor(grid Grid) *Editor {
	return NewEditorWithHistoryLimit(grid, DefaultHistoryLimit)
}

// NewEditorWithHistoryLimit creates an Editor whose history log keeps at most
// limit entries. A limit of zero or less disables the cap.
func NewEditorWithHistoryLimit(grid Grid, limit int) *Editor {
	return &Editor{
		grid:    grid,
		history: historyLog{cursor: -1, limit: limit},
		search:  searchState{cursor: -1},
	}
}

// Grid returns the live grid. The returned value must be treated as
// read-only; use Editor methods to mutate.
func (e *Editor) Grid() Grid { return e.grid }

// Clipboard returns the current clipboard block, or nil when empty. The
// returned slices must be treated as read-only.
func (e *Editor) Clipboard() [][]string { return e.clip }

// Dirty reports whether the document has unsaved changes.
func (e *Editor) Dirty() bool { return e.dirty }

// MarkSaved clears the unsaved-changes flag. Called by the persistence layer
// after a successful save.
func (e *Editor) MarkSaved() { e.dirty = false }

// Revision returns a counter that increases on every mutation, undo, and
// redo. Callers that compute a replacement grid asynchronously capture the
// revision first and compare it at apply time to detect that the document
// moved underneath them.
func (e *Editor) Revision() uint64 { return e.revision }

// touch marks the document dirty and advances the revision counter.
func (e *Editor) touch() {
	e.dirty = true
	e.revision++
}
