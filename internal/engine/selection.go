package engine

// selection.go implements the selection model: either a single cell or a
// rectangular range with anchor/focus semantics. The two forms are variants of
// the Selection sum type, so mutual exclusivity holds by construction; the
// Editor stores exactly one Selection value (or nil for no selection).

// CellRef addresses one cell and carries a snapshot of its value at the time
// the reference was built. The value is not re-read live; after any mutation a
// stale CellRef must be re-derived before reuse.
type CellRef struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

// RangeKind distinguishes how a Range was made, for display purposes only.
// The rectangle semantics are identical for all kinds.
type RangeKind string

const (
	RangeCells   RangeKind = "range"
	RangeRows    RangeKind = "row"
	RangeColumns RangeKind = "column"
)

// Selection is the active selection: a SingleCell or a Range.
type Selection interface {
	// Bounds returns the selection's bounding box as inclusive
	// (top, left, bottom, right) indices.
	Bounds() (top, left, bottom, right int)

	isSelection()
}

// SingleCell selects exactly one cell.
type SingleCell struct {
	Cell CellRef `json:"cell"`
}

func (SingleCell) isSelection() {}

// Bounds returns the cell's position as a degenerate rectangle.
func (s SingleCell) Bounds() (int, int, int, int) {
	return s.Cell.Row, s.Cell.Col, s.Cell.Row, s.Cell.Col
}

// Range selects a rectangle of cells. Start/End are the normalized (min/max)
// corners derived from Anchor/Focus; Anchor is the fixed origin of the extend
// gesture and Focus its current endpoint.
type Range struct {
	Start  CellRef   `json:"start"`
	End    CellRef   `json:"end"`
	Anchor CellRef   `json:"anchor"`
	Focus  CellRef   `json:"focus"`
	Kind   RangeKind `json:"kind"`
}

func (Range) isSelection() {}

// Bounds returns the normalized rectangle.
func (r Range) Bounds() (int, int, int, int) {
	return r.Start.Row, r.Start.Col, r.End.Row, r.End.Col
}

// newRange builds a Range from an anchor and focus, recomputing the
// normalized Start/End corners.
func (e *Editor) newRange(anchor, focus CellRef, kind RangeKind) Range {
	top, bottom := anchor.Row, focus.Row
	if top > bottom {
		top, bottom = bottom, top
	}
	left, right := anchor.Col, focus.Col
	if left > right {
		left, right = right, left
	}
	return Range{
		Start:  e.cellRef(top, left),
		End:    e.cellRef(bottom, right),
		Anchor: anchor,
		Focus:  focus,
		Kind:   kind,
	}
}

// cellRef builds a CellRef for (row, col) with the current grid value.
// Out-of-bounds addresses yield an empty value; the position is kept as given.
func (e *Editor) cellRef(row, col int) CellRef {
	v, _ := e.grid.Cell(row, col)
	return CellRef{Row: row, Col: col, Value: v}
}

// Selection returns the active selection, or nil when nothing is selected.
func (e *Editor) Selection() Selection { return e.sel }

// SelectCell makes (row, col) the active selection as a single cell.
// Indices are taken as given; bounds are the caller's responsibility.
func (e *Editor) SelectCell(row, col int) {
	e.sel = SingleCell{Cell: e.cellRef(row, col)}
}

// SelectRange selects the rectangle spanned by the two corners, with the
// first corner as anchor and the second as focus.
func (e *Editor) SelectRange(anchorRow, anchorCol, focusRow, focusCol int) {
	e.sel = e.newRange(e.cellRef(anchorRow, anchorCol), e.cellRef(focusRow, focusCol), RangeCells)
}

// SelectRow selects row i across all columns.
func (e *Editor) SelectRow(i int) {
	last := e.grid.ColumnCount() - 1
	if last < 0 {
		last = 0
	}
	e.sel = e.newRange(e.cellRef(i, 0), e.cellRef(i, last), RangeRows)
}

// SelectColumn selects column j across all rows.
func (e *Editor) SelectColumn(j int) {
	last := e.grid.RowCount() - 1
	if last < 0 {
		last = 0
	}
	e.sel = e.newRange(e.cellRef(0, j), e.cellRef(last, j), RangeColumns)
}

// SelectAll selects the whole grid. An empty grid has nothing to select, so
// the selection is cleared instead.
func (e *Editor) SelectAll() {
	if e.grid.RowCount() == 0 || e.grid.ColumnCount() == 0 {
		e.ClearSelection()
		return
	}
	e.sel = e.newRange(e.cellRef(0, 0), e.cellRef(e.grid.RowCount()-1, e.grid.ColumnCount()-1), RangeCells)
}

// ExtendSelection moves the focus of the current selection to (row, col).
//
// A single cell becomes a Range anchored at that cell. An existing Range
// keeps its anchor: repeated extends always measure from the original
// anchor, never from the previous focus. With no active selection this
// degenerates to SelectCell.
func (e *Editor) ExtendSelection(row, col int) {
	focus := e.cellRef(row, col)
	switch sel := e.sel.(type) {
	case SingleCell:
		e.sel = e.newRange(sel.Cell, focus, RangeCells)
	case Range:
		e.sel = e.newRange(sel.Anchor, focus, sel.Kind)
	default:
		e.SelectCell(row, col)
	}
}

// ClearSelection drops the active selection.
func (e *Editor) ClearSelection() { e.sel = nil }
