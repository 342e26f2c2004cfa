package gridsort

// move.go implements single row and column relocation, built as pure
// replacement-grid functions like Sort so the caller can route them through
// the same apply-with-revision-check path.

import (
	"fmt"

	"github.com/celled/celled/internal/engine"
)

// MoveRow returns a copy of grid with the row at from relocated to to.
func MoveRow(grid engine.Grid, from, to int) (engine.Grid, string, error) {
	if from < 0 || from >= grid.RowCount() {
		return engine.Grid{}, "", fmt.Errorf("move row: source %d out of range", from)
	}
	if to < 0 || to >= grid.RowCount() {
		return engine.Grid{}, "", fmt.Errorf("move row: target %d out of range", to)
	}

	moved := grid.Clone()
	if from != to {
		row := moved.Rows[from]
		moved.Rows = append(moved.Rows[:from], moved.Rows[from+1:]...)
		rest := append([][]string{row}, moved.Rows[to:]...)
		moved.Rows = append(moved.Rows[:to], rest...)
	}
	return moved, fmt.Sprintf("Move row %d to %d", from+1, to+1), nil
}

// MoveColumn returns a copy of grid with the column at from relocated to to,
// header included.
func MoveColumn(grid engine.Grid, from, to int) (engine.Grid, string, error) {
	if from < 0 || from >= grid.ColumnCount() {
		return engine.Grid{}, "", fmt.Errorf("move column: source %d out of range", from)
	}
	if to < 0 || to >= grid.ColumnCount() {
		return engine.Grid{}, "", fmt.Errorf("move column: target %d out of range", to)
	}

	name := grid.Headers[from]
	moved := grid.Clone()
	if from != to {
		moved.Headers = moveString(moved.Headers, from, to)
		for i, row := range moved.Rows {
			moved.Rows[i] = moveString(row, from, to)
		}
	}
	return moved, fmt.Sprintf("Move column %q to %d", name, to+1), nil
}

// moveString relocates s[from] to index to, shifting the values between.
func moveString(s []string, from, to int) []string {
	v := s[from]
	s = append(s[:from], s[from+1:]...)
	rest := append([]string{v}, s[to:]...)
	return append(s[:to], rest...)
}
