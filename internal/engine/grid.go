package engine

// grid.go defines the Grid value and its structural queries.
//
// A Grid is pure data: an ordered header row plus an ordered list of string
// rows. Row and column counts are always derived from the slices, never
// trusted from file metadata. Every completed mutation leaves each row exactly
// as wide as the header row.

// Grid is the authoritative in-memory table.
//
// Callers must treat a Grid obtained from an Editor as read-only; mutations go
// through Editor methods, which build fresh backing arrays.
type Grid struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// NewGrid builds a Grid from headers and rows, normalizing every row to the
// header width (short rows are padded with empty strings, long rows
// truncated). Input slices are copied, not retained.
func NewGrid(headers []string, rows [][]string) Grid {
	h := make([]string, len(headers))
	copy(h, headers)

	normalized := make([][]string, len(rows))
	for i, row := range rows {
		nr := make([]string, len(h))
		copy(nr, row)
		normalized[i] = nr
	}
	return Grid{Headers: h, Rows: normalized}
}

// RowCount returns the number of data rows (the header row is not counted).
func (g Grid) RowCount() int { return len(g.Rows) }

// ColumnCount returns the number of columns.
func (g Grid) ColumnCount() int { return len(g.Headers) }

// Cell returns the value at (row, col) and whether the address is in bounds.
func (g Grid) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Headers) {
		return "", false
	}
	if col >= len(g.Rows[row]) {
		return "", true
	}
	return g.Rows[row][col], true
}

// Clone returns a deep structural copy of the grid.
func (g Grid) Clone() Grid {
	return Grid{Headers: cloneStrings(g.Headers), Rows: cloneRows(g.Rows)}
}

// Equal reports whether two grids have identical headers and cell contents.
func (g Grid) Equal(other Grid) bool {
	if len(g.Headers) != len(other.Headers) || len(g.Rows) != len(other.Rows) {
		return false
	}
	for i, h := range g.Headers {
		if other.Headers[i] != h {
			return false
		}
	}
	for i, row := range g.Rows {
		if len(row) != len(other.Rows[i]) {
			return false
		}
		for j, v := range row {
			if other.Rows[i][j] != v {
				return false
			}
		}
	}
	return true
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = cloneStrings(row)
	}
	return out
}
