package engine

// history.go implements the bounded undo/redo log. Every entry stores full
// before/after grid snapshots; recording truncates any redo branch beyond the
// cursor, appends, and advances. The log is capped with oldest-first eviction,
// shifting the cursor so undo/redo stay consistent.

import (
	"fmt"
	"time"
)

// DefaultHistoryLimit is the maximum number of history entries an Editor
// keeps unless constructed with a different limit.
const DefaultHistoryLimit = 100

// ActionKind tags a history entry with the mutation that produced it.
type ActionKind string

const (
	ActionCellEdit     ActionKind = "cell_edit"
	ActionPaste        ActionKind = "paste"
	ActionClear        ActionKind = "clear"
	ActionRowInsert    ActionKind = "row_insert"
	ActionRowDelete    ActionKind = "row_delete"
	ActionRowDuplicate ActionKind = "row_duplicate"
	ActionColumnInsert ActionKind = "column_insert"
	ActionColumnDelete ActionKind = "column_delete"
	ActionColumnRename ActionKind = "column_rename"
	ActionBulkReplace  ActionKind = "bulk_replace"
)

// HistoryAction is one undoable unit: the grid before and after a mutation.
// Entries are immutable once recorded and are destroyed only by oldest-first
// eviction or by being discarded as a redo branch.
type HistoryAction struct {
	Kind        ActionKind
	Before      Grid
	After       Grid
	Description string
	At          time.Time
}

// HistorySummary is the display form of a history entry, without snapshots.
type HistorySummary struct {
	Kind        ActionKind `json:"kind"`
	Description string     `json:"description"`
	At          time.Time  `json:"at"`
}

// historyLog is the entry list plus a cursor marking the currently-applied
// entry. cursor == len(entries)-1 means fully forward (nothing to redo);
// cursor == -1 means nothing to undo.
type historyLog struct {
	entries []HistoryAction
	cursor  int
	limit   int
}

func (h *historyLog) checkCursor() {
	if h.cursor < -1 || h.cursor >= len(h.entries) {
		panic(fmt.Sprintf("engine: history cursor %d out of range for %d entries", h.cursor, len(h.entries)))
	}
}

// record appends an action, discarding any redo branch first and evicting the
// oldest entries beyond the limit. Evicted snapshots are copied out of the
// backing array so they can be collected.
func (h *historyLog) record(a HistoryAction) {
	h.checkCursor()

	h.entries = append(h.entries[:h.cursor+1], a)
	h.cursor = len(h.entries) - 1

	if h.limit > 0 && len(h.entries) > h.limit {
		evict := len(h.entries) - h.limit
		kept := make([]HistoryAction, h.limit)
		copy(kept, h.entries[evict:])
		h.entries = kept
		h.cursor -= evict
	}
}

func (h *historyLog) canUndo() bool { return h.cursor >= 0 }
func (h *historyLog) canRedo() bool { return h.cursor < len(h.entries)-1 }

// record wraps the current grid transition into a history entry. The before
// snapshot must have been captured by the caller before the transform ran.
func (e *Editor) record(kind ActionKind, before Grid, description string) {
	e.history.record(HistoryAction{
		Kind:        kind,
		Before:      before,
		After:       e.grid,
		Description: description,
		At:          time.Now(),
	})
	e.touch()
}

// CanUndo reports whether there is an entry to undo.
func (e *Editor) CanUndo() bool { return e.history.canUndo() }

// CanRedo reports whether there is an entry to redo.
func (e *Editor) CanRedo() bool { return e.history.canRedo() }

// Undo restores the grid to the state before the current history entry.
// Returns false when there is nothing to undo. An active search query is
// re-run against the restored grid.
func (e *Editor) Undo() bool {
	e.history.checkCursor()
	if !e.history.canUndo() {
		return false
	}
	e.grid = e.history.entries[e.history.cursor].Before
	e.history.cursor--
	e.touch()
	e.refreshSearch()
	return true
}

// Redo re-applies the next history entry. Returns false when there is nothing
// to redo. An active search query is re-run against the restored grid.
func (e *Editor) Redo() bool {
	e.history.checkCursor()
	if !e.history.canRedo() {
		return false
	}
	e.history.cursor++
	e.grid = e.history.entries[e.history.cursor].After
	e.touch()
	e.refreshSearch()
	return true
}

// HistoryEntries returns display summaries for every entry in the log, oldest
// first.
func (e *Editor) HistoryEntries() []HistorySummary {
	out := make([]HistorySummary, len(e.history.entries))
	for i, a := range e.history.entries {
		out[i] = HistorySummary{Kind: a.Kind, Description: a.Description, At: a.At}
	}
	return out
}

// HistoryCursor returns the index of the currently-applied entry, or -1 when
// everything has been undone.
func (e *Editor) HistoryCursor() int { return e.history.cursor }
