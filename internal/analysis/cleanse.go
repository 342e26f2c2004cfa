package analysis

// cleanse.go implements bulk data cleanup as a pure transform: Apply takes a
// grid and returns the cleansed copy plus a record of what changed. The
// caller decides how the result lands; routing it through the editor's grid
// replacement makes a whole cleanse one undoable step.

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/celled/celled/internal/engine"
)

// Action names one cleansing operation.
type Action string

const (
	ActionTrimWhitespace    Action = "trim_whitespace"
	ActionRemoveDuplicates  Action = "remove_duplicates"
	ActionFillMissing       Action = "fill_missing"
	ActionStandardizeFormat Action = "standardize_format"
	ActionRemoveOutliers    Action = "remove_outliers"
	ActionNormalizeText     Action = "normalize_text"
)

// Fill methods for ActionFillMissing.
const (
	FillCustom  = "custom"
	FillForward = "forward"
	FillMean    = "mean"
)

// Target formats for ActionStandardizeFormat.
const (
	FormatDate   = "date"
	FormatNumber = "number"
	FormatPhone  = "phone"
	FormatEmail  = "email"
)

// Params selects the action and its knobs.
type Params struct {
	Action Action `json:"action"`

	// Columns restricts the action; empty means every column. Ignored by
	// remove_duplicates, which always compares whole rows.
	Columns []int `json:"columns,omitempty"`

	// FillMethod and FillValue configure fill_missing.
	FillMethod string `json:"fillMethod,omitempty"`
	FillValue  string `json:"fillValue,omitempty"`

	// Format selects the target shape for standardize_format.
	Format string `json:"format,omitempty"`
}

// Modification records one cell change.
type Modification struct {
	Row int    `json:"row"`
	Col int    `json:"col"`
	Old string `json:"old"`
	New string `json:"new"`
}

// Result summarizes a cleanse.
type Result struct {
	RowsAffected  int            `json:"rowsAffected"`
	CellsModified int            `json:"cellsModified"`
	Modifications []Modification `json:"modifications"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)
var nonDigits = regexp.MustCompile(`\D`)

// Apply runs one cleansing action over a copy of grid.
func Apply(grid engine.Grid, p Params) (engine.Grid, Result, error) {
	switch p.Action {
	case ActionTrimWhitespace:
		out, res := applyCellwise(grid, p.Columns, strings.TrimSpace)
		return out, res, nil
	case ActionNormalizeText:
		out, res := applyCellwise(grid, p.Columns, normalizeText)
		return out, res, nil
	case ActionRemoveDuplicates:
		out, res := removeDuplicateRows(grid)
		return out, res, nil
	case ActionFillMissing:
		return fillMissing(grid, p)
	case ActionStandardizeFormat:
		return standardizeFormat(grid, p)
	case ActionRemoveOutliers:
		out, res := removeOutliers(grid, p.Columns)
		return out, res, nil
	default:
		return engine.Grid{}, Result{}, fmt.Errorf("unknown cleanse action %q", p.Action)
	}
}

// applyCellwise rewrites each targeted cell through fn.
func applyCellwise(grid engine.Grid, columns []int, fn func(string) string) (engine.Grid, Result) {
	out := grid.Clone()
	target := columnSet(columns, grid.ColumnCount())
	var res Result
	rowsTouched := make(map[int]struct{})

	for r, row := range out.Rows {
		for c := range row {
			if !target[c] {
				continue
			}
			if next := fn(row[c]); next != row[c] {
				res.Modifications = append(res.Modifications, Modification{Row: r, Col: c, Old: row[c], New: next})
				row[c] = next
				res.CellsModified++
				rowsTouched[r] = struct{}{}
			}
		}
	}
	res.RowsAffected = len(rowsTouched)
	return out, res
}

func normalizeText(v string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(v, " "))
}

// removeDuplicateRows keeps the first occurrence of each distinct row.
func removeDuplicateRows(grid engine.Grid) (engine.Grid, Result) {
	out := grid.Clone()
	seen := make(map[string]struct{}, len(out.Rows))
	kept := out.Rows[:0]
	removed := 0
	for _, row := range out.Rows {
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	out.Rows = kept
	return out, Result{RowsAffected: removed}
}

// fillMissing writes a value into empty cells: a custom constant, the value
// from the row above, or the column mean rounded to 2 decimals.
func fillMissing(grid engine.Grid, p Params) (engine.Grid, Result, error) {
	method := p.FillMethod
	if method == "" {
		method = FillCustom
	}

	out := grid.Clone()
	target := columnSet(p.Columns, grid.ColumnCount())
	var res Result
	rowsTouched := make(map[int]struct{})

	means := make(map[int]string)
	if method == FillMean {
		for c := range target {
			if m, ok := columnMean(grid, c); ok {
				means[c] = m
			}
		}
	}

	for r, row := range out.Rows {
		for c := range row {
			if !target[c] || strings.TrimSpace(row[c]) != "" {
				continue
			}
			var next string
			switch method {
			case FillCustom:
				next = p.FillValue
			case FillForward:
				if r == 0 || c >= len(out.Rows[r-1]) {
					continue
				}
				next = out.Rows[r-1][c]
			case FillMean:
				m, ok := means[c]
				if !ok {
					continue
				}
				next = m
			default:
				return engine.Grid{}, Result{}, fmt.Errorf("unknown fill method %q", method)
			}
			if next == row[c] {
				continue
			}
			res.Modifications = append(res.Modifications, Modification{Row: r, Col: c, Old: row[c], New: next})
			row[c] = next
			res.CellsModified++
			rowsTouched[r] = struct{}{}
		}
	}
	res.RowsAffected = len(rowsTouched)
	return out, res, nil
}

func columnMean(grid engine.Grid, col int) (string, bool) {
	sum, n := 0.0, 0
	for _, row := range grid.Rows {
		if col >= len(row) {
			continue
		}
		if f, ok := ParseNumber(row[col]); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return "", false
	}
	return strconv.FormatFloat(sum/float64(n), 'f', 2, 64), true
}

// standardizeFormat rewrites targeted cells into one canonical shape.
func standardizeFormat(grid engine.Grid, p Params) (engine.Grid, Result, error) {
	var fn func(string) string
	switch p.Format {
	case FormatDate:
		fn = standardizeDate
	case FormatNumber:
		fn = standardizeNumber
	case FormatPhone:
		fn = standardizePhone
	case FormatEmail:
		fn = standardizeEmail
	default:
		return engine.Grid{}, Result{}, fmt.Errorf("unknown standardize format %q", p.Format)
	}
	out, res := applyCellwise(grid, p.Columns, fn)
	return out, res, nil
}

func standardizeDate(v string) string {
	if t, ok := ParseTemporal(v); ok {
		return t.Format("2006-01-02")
	}
	return v
}

func standardizeNumber(v string) string {
	if f, ok := ParseNumber(CleanValue(v)); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return v
}

func standardizePhone(v string) string {
	digits := nonDigits.ReplaceAllString(v, "")
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return v
	}
	return fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:10])
}

func standardizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// removeOutliers blanks the cells the quality scan would flag, leaving row
// structure intact.
func removeOutliers(grid engine.Grid, columns []int) (engine.Grid, Result) {
	out := grid.Clone()
	target := columnSet(columns, grid.ColumnCount())
	cols := make([]int, 0, len(target))
	for c := range target {
		cols = append(cols, c)
	}
	sort.Ints(cols)

	var res Result
	rowsTouched := make(map[int]struct{})

	for _, c := range cols {
		for _, o := range findOutliers(columnValues(grid, c), c) {
			old := out.Rows[o.Row][o.Col]
			res.Modifications = append(res.Modifications, Modification{Row: o.Row, Col: o.Col, Old: old, New: ""})
			out.Rows[o.Row][o.Col] = ""
			res.CellsModified++
			rowsTouched[o.Row] = struct{}{}
		}
	}
	res.RowsAffected = len(rowsTouched)
	return out, res
}

// columnSet expands a column filter into a membership set over the grid
// width.
func columnSet(columns []int, width int) map[int]bool {
	set := make(map[int]bool, width)
	if len(columns) == 0 {
		for c := 0; c < width; c++ {
			set[c] = true
		}
		return set
	}
	for _, c := range columns {
		if c >= 0 && c < width {
			set[c] = true
		}
	}
	return set
}
