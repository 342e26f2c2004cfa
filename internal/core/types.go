package core

import (
	"time"

	"github.com/celled/celled/internal/engine"
	"github.com/celled/celled/internal/gridsort"
)

// FileInfo describes the file behind a session and the dialect it was read
// with. Blank sessions have an empty Path until the first save.
type FileInfo struct {
	Path          string    `json:"path,omitempty"`
	Filename      string    `json:"filename,omitempty"`
	Delimiter     string    `json:"delimiter"`
	Encoding      string    `json:"encoding"`
	HasBOM        bool      `json:"hasBom"`
	FileSizeBytes int64     `json:"fileSizeBytes,omitempty"`
	LastModified  time.Time `json:"lastModified,omitempty"`
}

// SessionInfo is the list form of a session.
type SessionInfo struct {
	ID          string    `json:"id"`
	Path        string    `json:"path,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	RowCount    int       `json:"rowCount"`
	ColumnCount int       `json:"columnCount"`
	Dirty       bool      `json:"dirty"`
	LastAccess  time.Time `json:"lastAccess"`
}

// SelectionInfo is the wire form of the active selection.
type SelectionInfo struct {
	Kind     string `json:"kind"` // cell, range, row, column
	StartRow int    `json:"startRow"`
	StartCol int    `json:"startCol"`
	EndRow   int    `json:"endRow"`
	EndCol   int    `json:"endCol"`
}

// SearchSummary is the wire form of the active search.
type SearchSummary struct {
	Active     bool                 `json:"active"`
	Query      string               `json:"query"`
	Options    engine.SearchOptions `json:"options"`
	MatchCount int                  `json:"matchCount"`
	Cursor     int                  `json:"cursor"`
	Current    *engine.CellRef      `json:"current,omitempty"`
}

// GridState is the full session snapshot returned by GetState. Rows are not
// included; clients page them in with GetChunk.
type GridState struct {
	SessionID   string          `json:"sessionId"`
	File        FileInfo        `json:"file"`
	Headers     []string        `json:"headers"`
	RowCount    int             `json:"rowCount"`
	ColumnCount int             `json:"columnCount"`
	Dirty       bool            `json:"dirty"`
	CanUndo     bool            `json:"canUndo"`
	CanRedo     bool            `json:"canRedo"`
	Revision    uint64          `json:"revision"`
	Selection   *SelectionInfo  `json:"selection,omitempty"`
	SortState   *gridsort.State `json:"sortState,omitempty"`
	Search      *SearchSummary  `json:"search,omitempty"`
}

// Chunk is a bounds-clamped slice of rows.
type Chunk struct {
	Start     int        `json:"start"`
	End       int        `json:"end"` // exclusive
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"totalRows"`
}

// SelectionRequest selects cells by kind. Fields beyond the kind's needs are
// ignored: cell uses Row/Col, range all four corners, row and column their
// single Index.
type SelectionRequest struct {
	Kind      string `json:"kind"` // cell, range, row, column, all, none
	Row       int    `json:"row,omitempty"`
	Col       int    `json:"col,omitempty"`
	AnchorRow int    `json:"anchorRow,omitempty"`
	AnchorCol int    `json:"anchorCol,omitempty"`
	FocusRow  int    `json:"focusRow,omitempty"`
	FocusCol  int    `json:"focusCol,omitempty"`
	Index     int    `json:"index,omitempty"`
}

// ClipboardResult reports what a copy/cut/paste touched.
type ClipboardResult struct {
	Applied bool `json:"applied"`
	Rows    int  `json:"rows,omitempty"`
	Cols    int  `json:"cols,omitempty"`
}

// SearchRequest sets the query for a session.
type SearchRequest struct {
	Query   string               `json:"query"`
	Options engine.SearchOptions `json:"options"`
}

// HistoryView pairs the entry list with the cursor position.
type HistoryView struct {
	Entries []engine.HistorySummary `json:"entries"`
	Cursor  int                     `json:"cursor"`
}

// ColumnType is one column's detected data type.
type ColumnType struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// SaveResult reports where a save landed and the refreshed file info.
type SaveResult struct {
	Path     string   `json:"path"`
	RowCount int      `json:"rowCount"`
	File     FileInfo `json:"file"`
}

// SortOutcome reports an applied sort or move.
type SortOutcome struct {
	Description string          `json:"description"`
	Revision    uint64          `json:"revision"`
	SortState   *gridsort.State `json:"sortState,omitempty"`
}
