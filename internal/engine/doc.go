// Package engine implements the grid editing and history core.
//
// This package owns the in-memory representation of a tabular document and
// everything that mutates it: the selection model, the clipboard buffer, the
// row/column/cell operations, a bounded undo/redo log, and the search and
// replace matcher. It performs no I/O and depends on nothing outside the
// standard library; persistence, export, sorting, and analysis live in their
// own packages and exchange plain [Grid] values with this one.
//
// # Editor
//
// One [Editor] is created per open document. The Editor is not safe for
// concurrent use; callers serialize access (the session service wraps each
// editor in a mutex). There is no package-level state, so any number of
// editors can coexist in one process.
//
//	ed := engine.NewEditor(engine.NewGrid(headers, rows))
//	ed.UpdateCell(0, 0, "9")
//	ed.Undo()
//
// # Snapshots
//
// Grids are immutable by convention: every mutation builds new backing arrays
// and never writes through to storage shared with an earlier Grid value. A
// Grid captured as a history snapshot therefore stays valid no matter what
// happens to the live document afterwards. History entries store full
// before/after snapshots rather than diffs; the log is capped at
// [DefaultHistoryLimit] entries with oldest-first eviction.
//
// # Search
//
// Search supports plain substring, whole-word (whitespace tokens, not regex
// word boundaries), and regular-expression matching, each optionally
// case-sensitive and optionally restricted to one column. Match results are a
// point-in-time scan: ordinary mutations leave them stale, while undo and
// redo re-run the scan against the restored grid. Replacement (current match
// or all matches) is routed through the history log like any other mutation.
package engine
