package gridsort

// sort.go implements grid sorting as a pure function: given a grid and up to
// two column specs it returns a replacement grid plus a human-readable
// description for the history log. The caller owns applying the result; see
// the service layer's revision check for how concurrent edits are rejected.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/celled/celled/internal/analysis"
	"github.com/celled/celled/internal/engine"
)

// MaxSortColumns caps how many columns one sort may combine.
const MaxSortColumns = 2

// Direction orders a sorted column.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ErrGridChanged reports that the grid was edited between dispatching an
// external reorder and applying its result. The edit wins; the reorder is
// discarded.
var ErrGridChanged = errors.New("grid changed while sorting")

// Spec names one column to sort by.
type Spec struct {
	Column int       `json:"column"`
	Dir    Direction `json:"dir"`
}

// State records the sort applied to a file, for the metadata sidecar.
type State struct {
	Specs     []Spec    `json:"specs"`
	AppliedAt time.Time `json:"appliedAt"`
}

// Sort returns a copy of grid with rows stably reordered by the specs.
// Comparison is type-aware per cell pair: numeric when both sides parse as
// numbers, temporal when both parse as dates, case-folded text otherwise.
// Empty cells sort last in either direction.
func Sort(ctx context.Context, grid engine.Grid, specs []Spec) (engine.Grid, string, error) {
	if err := ctx.Err(); err != nil {
		return engine.Grid{}, "", err
	}
	if len(specs) == 0 {
		return engine.Grid{}, "", errors.New("no sort columns")
	}
	if len(specs) > MaxSortColumns {
		return engine.Grid{}, "", fmt.Errorf("at most %d sort columns, got %d", MaxSortColumns, len(specs))
	}
	for _, s := range specs {
		if s.Column < 0 || s.Column >= grid.ColumnCount() {
			return engine.Grid{}, "", fmt.Errorf("sort column %d out of range", s.Column)
		}
		if s.Dir != Ascending && s.Dir != Descending {
			return engine.Grid{}, "", fmt.Errorf("unknown sort direction %q", s.Dir)
		}
	}

	sorted := grid.Clone()
	sort.SliceStable(sorted.Rows, func(i, j int) bool {
		return lessRow(sorted.Rows[i], sorted.Rows[j], specs)
	})
	return sorted, describeSort(grid.Headers, specs), nil
}

// lessRow compares two rows under the spec list. The first non-equal column
// decides.
func lessRow(a, b []string, specs []Spec) bool {
	for _, s := range specs {
		va := cellAt(a, s.Column)
		vb := cellAt(b, s.Column)

		ae := strings.TrimSpace(va) == ""
		be := strings.TrimSpace(vb) == ""
		if ae || be {
			if ae == be {
				continue
			}
			// Empty cells land last regardless of direction.
			return be
		}

		c := compareValues(va, vb)
		if c == 0 {
			continue
		}
		if s.Dir == Descending {
			c = -c
		}
		return c < 0
	}
	return false
}

// compareValues orders two non-empty cell values: numerically when both
// parse as numbers, by time when both parse as dates, else as case-folded
// strings.
func compareValues(a, b string) int {
	if fa, okA := analysis.ParseNumber(a); okA {
		if fb, okB := analysis.ParseNumber(b); okB {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if ta, okA := analysis.ParseTemporal(a); okA {
		if tb, okB := analysis.ParseTemporal(b); okB {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// describeSort renders a history description like
// `Sort by "name" asc, "age" desc`.
func describeSort(headers []string, specs []Spec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		name := fmt.Sprintf("column %d", s.Column)
		if s.Column < len(headers) && headers[s.Column] != "" {
			name = headers[s.Column]
		}
		parts[i] = fmt.Sprintf("%q %s", name, s.Dir)
	}
	return "Sort by " + strings.Join(parts, ", ")
}
