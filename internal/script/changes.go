package script

// changes.go defines the change list a transformation script returns and the
// pure application of that list to a grid. Changes apply in order against the
// evolving grid, so indices in later changes refer to the grid as earlier
// changes left it. The caller lands the result through the editor's grid
// replacement, making the whole script one undoable step.

import (
	"fmt"

	"github.com/celled/celled/internal/engine"
)

// ChangeKind discriminates Change entries.
type ChangeKind string

const (
	ChangeCell         ChangeKind = "cell"
	ChangeAddColumn    ChangeKind = "addColumn"
	ChangeRemoveColumn ChangeKind = "removeColumn"
	ChangeRenameColumn ChangeKind = "renameColumn"
	ChangeAddRow       ChangeKind = "addRow"
	ChangeRemoveRow    ChangeKind = "removeRow"
)

// Change is one grid operation from a transformation script. Which fields
// matter depends on Kind:
//
//	cell          Row, Col, NewValue (OldValue informational)
//	addColumn     Col (insertion index), Name, NewValue as the fill value
//	removeColumn  Col
//	renameColumn  Col, NewName
//	addRow        Row (insertion index), Values
//	removeRow     Row
type Change struct {
	Kind     ChangeKind `json:"type"`
	Row      int        `json:"row,omitempty"`
	Col      int        `json:"col,omitempty"`
	OldValue string     `json:"oldValue,omitempty"`
	NewValue string     `json:"newValue,omitempty"`
	Name     string     `json:"name,omitempty"`
	NewName  string     `json:"newName,omitempty"`
	Values   []string   `json:"values,omitempty"`
}

// ChangePreview is one before/after cell shown to the user ahead of apply.
type ChangePreview struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	ColumnName string `json:"columnName"`
	OldValue   string `json:"oldValue"`
	NewValue   string `json:"newValue"`
}

// DefaultPreviewLimit caps previews derived from a change list.
const DefaultPreviewLimit = 20

// ApplyChanges runs the change list over a copy of grid and returns the
// result. The input grid is never modified. Any out-of-range index aborts
// with an error naming the offending change.
func ApplyChanges(grid engine.Grid, changes []Change) (engine.Grid, error) {
	out := grid.Clone()

	for i, ch := range changes {
		switch ch.Kind {
		case ChangeCell:
			if ch.Row < 0 || ch.Row >= len(out.Rows) || ch.Col < 0 || ch.Col >= len(out.Headers) {
				return engine.Grid{}, fmt.Errorf("change %d: cell (%d, %d) out of range", i, ch.Row, ch.Col)
			}
			out.Rows[ch.Row][ch.Col] = ch.NewValue

		case ChangeAddColumn:
			if ch.Col < 0 || ch.Col > len(out.Headers) {
				return engine.Grid{}, fmt.Errorf("change %d: column index %d out of range", i, ch.Col)
			}
			name := ch.Name
			if name == "" {
				name = fmt.Sprintf("Column %d", len(out.Headers)+1)
			}
			out.Headers = insertValueAt(out.Headers, ch.Col, name)
			for r := range out.Rows {
				out.Rows[r] = insertValueAt(out.Rows[r], ch.Col, ch.NewValue)
			}

		case ChangeRemoveColumn:
			if ch.Col < 0 || ch.Col >= len(out.Headers) {
				return engine.Grid{}, fmt.Errorf("change %d: column index %d out of range", i, ch.Col)
			}
			out.Headers = removeValueAt(out.Headers, ch.Col)
			for r := range out.Rows {
				if ch.Col < len(out.Rows[r]) {
					out.Rows[r] = removeValueAt(out.Rows[r], ch.Col)
				}
			}

		case ChangeRenameColumn:
			if ch.Col < 0 || ch.Col >= len(out.Headers) {
				return engine.Grid{}, fmt.Errorf("change %d: column index %d out of range", i, ch.Col)
			}
			if ch.NewName == "" {
				return engine.Grid{}, fmt.Errorf("change %d: empty column name", i)
			}
			out.Headers[ch.Col] = ch.NewName

		case ChangeAddRow:
			if ch.Row < 0 || ch.Row > len(out.Rows) {
				return engine.Grid{}, fmt.Errorf("change %d: row index %d out of range", i, ch.Row)
			}
			row := make([]string, len(out.Headers))
			copy(row, ch.Values)
			rows := make([][]string, 0, len(out.Rows)+1)
			rows = append(rows, out.Rows[:ch.Row]...)
			rows = append(rows, row)
			out.Rows = append(rows, out.Rows[ch.Row:]...)

		case ChangeRemoveRow:
			if ch.Row < 0 || ch.Row >= len(out.Rows) {
				return engine.Grid{}, fmt.Errorf("change %d: row index %d out of range", i, ch.Row)
			}
			rows := make([][]string, 0, len(out.Rows)-1)
			rows = append(rows, out.Rows[:ch.Row]...)
			out.Rows = append(rows, out.Rows[ch.Row+1:]...)

		default:
			return engine.Grid{}, fmt.Errorf("change %d: unknown change type %q", i, ch.Kind)
		}
	}

	return out, nil
}

// BuildPreview derives a cell-level preview from a change list against the
// pre-apply grid. Only cell changes contribute; structural changes are
// summarized by the change list itself. limit <= 0 uses DefaultPreviewLimit.
func BuildPreview(grid engine.Grid, changes []Change, limit int) []ChangePreview {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}

	var out []ChangePreview
	for _, ch := range changes {
		if ch.Kind != ChangeCell {
			continue
		}
		if len(out) >= limit {
			break
		}
		p := ChangePreview{Row: ch.Row, Col: ch.Col, OldValue: ch.OldValue, NewValue: ch.NewValue}
		if ch.Col >= 0 && ch.Col < len(grid.Headers) {
			p.ColumnName = grid.Headers[ch.Col]
		}
		if p.OldValue == "" {
			if v, ok := grid.Cell(ch.Row, ch.Col); ok {
				p.OldValue = v
			}
		}
		out = append(out, p)
	}
	return out
}

func insertValueAt(s []string, i int, v string) []string {
	out := make([]string, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	return append(out, s[i:]...)
}

func removeValueAt(s []string, i int) []string {
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
