package engine

// mutations.go implements the grid-transforming operations. Each one is a
// pure transform: the before snapshot is captured first, new backing arrays
// are built, and the transition is recorded in the history log. The selection
// is updated to track the edited region so keyboard-driven editing can
// continue from where it acted.

import "fmt"

// RowPosition says where InsertRow places the new row relative to the index.
type RowPosition string

const (
	RowAbove RowPosition = "above"
	RowBelow RowPosition = "below"
)

// ColumnPosition says where InsertColumn places the new column relative to
// the index.
type ColumnPosition string

const (
	ColumnBefore ColumnPosition = "before"
	ColumnAfter  ColumnPosition = "after"
)

// UpdateCell sets the value of one cell. The edited cell stays selected with
// its new value.
func (e *Editor) UpdateCell(row, col int, value string) error {
	if row < 0 || row >= e.grid.RowCount() || col < 0 || col >= e.grid.ColumnCount() {
		return fmt.Errorf("update cell (%d, %d): %w", row, col, ErrOutOfRange)
	}

	before := e.grid
	rows := cloneRows(before.Rows)
	rows[row][col] = value
	e.grid = Grid{Headers: cloneStrings(before.Headers), Rows: rows}

	e.record(ActionCellEdit, before, "Edit cell")
	e.sel = SingleCell{Cell: CellRef{Row: row, Col: col, Value: value}}
	return nil
}

// CopySelection reads the active selection into the clipboard as a
// rectangular block, replacing any previous clipboard content. Missing cells
// read as empty strings. Returns false (and leaves the clipboard untouched)
// when nothing is selected. Copy records no history entry.
func (e *Editor) CopySelection() bool {
	if e.sel == nil {
		return false
	}
	top, left, bottom, right := e.sel.Bounds()

	block := make([][]string, 0, bottom-top+1)
	for r := top; r <= bottom; r++ {
		line := make([]string, 0, right-left+1)
		for c := left; c <= right; c++ {
			v, _ := e.grid.Cell(r, c)
			line = append(line, v)
		}
		block = append(block, line)
	}
	e.clip = block
	return true
}

// CutSelection copies the active selection and then blanks it, recording a
// single history entry for the clear.
func (e *Editor) CutSelection() bool {
	if !e.CopySelection() {
		return false
	}
	return e.clearCells("Cut")
}

// SetClipboard replaces the clipboard with an externally sourced block, such
// as text pasted in from the system clipboard. A nil or empty block clears
// it. No history entry is recorded.
func (e *Editor) SetClipboard(block [][]string) {
	if len(block) == 0 {
		e.clip = nil
		return
	}
	e.clip = cloneRows(block)
}

// ClearCells blanks every cell in the active selection. Returns false when
// nothing is selected.
func (e *Editor) ClearCells() bool {
	return e.clearCells("Clear cells")
}

func (e *Editor) clearCells(description string) bool {
	if e.sel == nil {
		return false
	}
	top, left, bottom, right := e.sel.Bounds()

	before := e.grid
	rows := cloneRows(before.Rows)
	for r := top; r <= bottom && r < len(rows); r++ {
		if r < 0 {
			continue
		}
		for c := left; c <= right && c < len(rows[r]); c++ {
			if c < 0 {
				continue
			}
			rows[r][c] = ""
		}
	}
	e.grid = Grid{Headers: cloneStrings(before.Headers), Rows: rows}
	e.record(ActionClear, before, description)
	return true
}

// Paste anchors the clipboard's top-left at the top-left of the active
// selection. Returns false when the clipboard is empty or no selection is
// active.
func (e *Editor) Paste() bool {
	if e.sel == nil {
		return false
	}
	top, left, _, _ := e.sel.Bounds()
	return e.PasteAt(top, left)
}

// PasteAt anchors the clipboard's top-left at (row, col). The grid grows with
// empty-filled rows if the paste extends past the current row count; cells
// whose target column falls outside the header width are silently dropped,
// so paste never grows columns. An empty clipboard or an unusable target is
// a silent no-op with no history entry.
func (e *Editor) PasteAt(row, col int) bool {
	if len(e.clip) == 0 {
		return false
	}
	width := e.grid.ColumnCount()
	if row < 0 || col < 0 || col >= width {
		return false
	}

	before := e.grid
	rows := cloneRows(before.Rows)

	need := row + len(e.clip)
	for len(rows) < need {
		rows = append(rows, make([]string, width))
	}

	for i, line := range e.clip {
		for j, v := range line {
			c := col + j
			if c >= width {
				break
			}
			rows[row+i][c] = v
		}
	}

	e.grid = Grid{Headers: cloneStrings(before.Headers), Rows: rows}
	e.record(ActionPaste, before, "Paste")

	bottom := row + len(e.clip) - 1
	right := col + maxLineWidth(e.clip) - 1
	if right >= width {
		right = width - 1
	}
	e.sel = e.newRange(e.cellRef(row, col), e.cellRef(bottom, right), RangeCells)
	return true
}

func maxLineWidth(block [][]string) int {
	max := 0
	for _, line := range block {
		if len(line) > max {
			max = len(line)
		}
	}
	return max
}

// InsertRow inserts one row of empty strings above or below the given index.
// The new row becomes the selection.
func (e *Editor) InsertRow(pos RowPosition, index int) error {
	target := index
	if pos == RowBelow {
		target = index + 1
	}
	if index < 0 || target > e.grid.RowCount() {
		return fmt.Errorf("insert row at %d: %w", index, ErrOutOfRange)
	}

	before := e.grid
	rows := insertRowAt(before.Rows, target, make([]string, before.ColumnCount()))
	e.grid = Grid{Headers: cloneStrings(before.Headers), Rows: rows}

	e.record(ActionRowInsert, before, "Insert row")
	e.SelectRow(target)
	return nil
}

// DeleteRow removes the row at index. The selection moves to the row that
// takes its place, or clears when no rows remain.
func (e *Editor) DeleteRow(index int) error {
	if index < 0 || index >= e.grid.RowCount() {
		return fmt.Errorf("delete row %d: %w", index, ErrOutOfRange)
	}

	before := e.grid
	rows := make([][]string, 0, len(before.Rows)-1)
	for i, row := range before.Rows {
		if i == index {
			continue
		}
		rows = append(rows, cloneStrings(row))
	}
	e.grid = Grid{Headers: cloneStrings(before.Headers), Rows: rows}

	e.record(ActionRowDelete, before, "Delete row")
	if rc := e.grid.RowCount(); rc > 0 {
		if index >= rc {
			index = rc - 1
		}
		e.SelectRow(index)
	} else {
		e.ClearSelection()
	}
	return nil
}

// DuplicateRow inserts a structural copy of the row at index immediately
// after it and selects the copy.
func (e *Editor) DuplicateRow(index int) error {
	if index < 0 || index >= e.grid.RowCount() {
		return fmt.Errorf("duplicate row %d: %w", index, ErrOutOfRange)
	}

	before := e.grid
	rows := insertRowAt(before.Rows, index+1, cloneStrings(before.Rows[index]))
	e.grid = Grid{Headers: cloneStrings(before.Headers), Rows: rows}

	e.record(ActionRowDuplicate, before, "Duplicate row")
	e.SelectRow(index + 1)
	return nil
}

// InsertColumn inserts an auto-named column before or after the given index,
// adding an empty cell to every row. It returns the generated column name.
// The new column becomes the selection.
func (e *Editor) InsertColumn(pos ColumnPosition, index int) (string, error) {
	target := index
	if pos == ColumnAfter {
		target = index + 1
	}
	if index < 0 || target > e.grid.ColumnCount() {
		return "", fmt.Errorf("insert column at %d: %w", index, ErrOutOfRange)
	}

	before := e.grid
	name := fmt.Sprintf("Column %d", before.ColumnCount()+1)

	headers := insertStringAt(before.Headers, target, name)
	rows := make([][]string, len(before.Rows))
	for i, row := range before.Rows {
		rows[i] = insertStringAt(row, target, "")
	}
	e.grid = Grid{Headers: headers, Rows: rows}

	e.record(ActionColumnInsert, before, fmt.Sprintf("Insert column %q", name))
	e.SelectColumn(target)
	return name, nil
}

// DeleteColumn removes the header at index and the corresponding cell from
// every row. The selection moves to the column that takes its place, or
// clears when no columns remain.
func (e *Editor) DeleteColumn(index int) error {
	if index < 0 || index >= e.grid.ColumnCount() {
		return fmt.Errorf("delete column %d: %w", index, ErrOutOfRange)
	}

	before := e.grid
	name := before.Headers[index]

	headers := removeStringAt(before.Headers, index)
	rows := make([][]string, len(before.Rows))
	for i, row := range before.Rows {
		rows[i] = removeStringAt(row, index)
	}
	e.grid = Grid{Headers: headers, Rows: rows}

	e.record(ActionColumnDelete, before, fmt.Sprintf("Delete column %q", name))
	if cc := e.grid.ColumnCount(); cc > 0 {
		if index >= cc {
			index = cc - 1
		}
		e.SelectColumn(index)
	} else {
		e.ClearSelection()
	}
	return nil
}

// RenameColumn rewrites one header string. Rows are untouched and the
// selection is left alone.
func (e *Editor) RenameColumn(index int, name string) error {
	if index < 0 || index >= e.grid.ColumnCount() {
		return fmt.Errorf("rename column %d: %w", index, ErrOutOfRange)
	}

	before := e.grid
	old := before.Headers[index]
	headers := cloneStrings(before.Headers)
	headers[index] = name
	e.grid = Grid{Headers: headers, Rows: cloneRows(before.Rows)}

	e.record(ActionColumnRename, before, fmt.Sprintf("Rename column %q to %q", old, name))
	return nil
}

// ReplaceGrid substitutes the whole grid with an externally computed result
// (sort, reorder, cleansing, script transform). The new grid is normalized to
// its own header width but otherwise trusted. The selection is cleared since
// cell addresses may have moved arbitrarily.
func (e *Editor) ReplaceGrid(newGrid Grid, description string) {
	if description == "" {
		description = "Replace grid"
	}
	before := e.grid
	e.grid = NewGrid(newGrid.Headers, newGrid.Rows)
	e.record(ActionBulkReplace, before, description)
	e.ClearSelection()
}

func insertRowAt(rows [][]string, index int, row []string) [][]string {
	out := make([][]string, 0, len(rows)+1)
	for i, r := range rows {
		if i == index {
			out = append(out, row)
		}
		out = append(out, cloneStrings(r))
	}
	if index >= len(rows) {
		out = append(out, row)
	}
	return out
}

func insertStringAt(s []string, index int, v string) []string {
	out := make([]string, 0, len(s)+1)
	for i, x := range s {
		if i == index {
			out = append(out, v)
		}
		out = append(out, x)
	}
	if index >= len(s) {
		out = append(out, v)
	}
	return out
}

func removeStringAt(s []string, index int) []string {
	out := make([]string, 0, len(s)-1)
	for i, x := range s {
		if i == index {
			continue
		}
		out = append(out, x)
	}
	return out
}
