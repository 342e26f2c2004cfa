package gridsort

import (
	"context"
	"reflect"
	"testing"

	"github.com/celled/celled/internal/engine"
)

func grid(headers []string, rows [][]string) engine.Grid {
	return engine.NewGrid(headers, rows)
}

func column(g engine.Grid, col int) []string {
	out := make([]string, 0, g.RowCount())
	for _, row := range g.Rows {
		out = append(out, row[col])
	}
	return out
}

// ============================================================================
// Sorting
// ============================================================================

func TestSortTypeAware(t *testing.T) {
	cases := []struct {
		name   string
		values []string
		dir    Direction
		want   []string
	}{
		{
			// Numeric comparison, not lexicographic: 9 < 10.
			name:   "numeric ascending",
			values: []string{"10", "9", "2", "100"},
			dir:    Ascending,
			want:   []string{"2", "9", "10", "100"},
		},
		{
			name:   "numeric descending",
			values: []string{"10", "9", "2", "100"},
			dir:    Descending,
			want:   []string{"100", "10", "9", "2"},
		},
		{
			name:   "currency and separators",
			values: []string{"$1,000", "$50", "(200)", "$3.50"},
			dir:    Ascending,
			want:   []string{"(200)", "$3.50", "$50", "$1,000"},
		},
		{
			name:   "text case folded",
			values: []string{"banana", "Apple", "cherry", "apricot"},
			dir:    Ascending,
			want:   []string{"Apple", "apricot", "banana", "cherry"},
		},
		{
			name:   "dates",
			values: []string{"2024-03-01", "2023-12-31", "2024-01-15"},
			dir:    Ascending,
			want:   []string{"2023-12-31", "2024-01-15", "2024-03-01"},
		},
		{
			name:   "empty cells last ascending",
			values: []string{"b", "", "a", " "},
			dir:    Ascending,
			want:   []string{"a", "b", "", " "},
		},
		{
			name:   "empty cells last descending",
			values: []string{"b", "", "a", " "},
			dir:    Descending,
			want:   []string{"b", "a", "", " "},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := make([][]string, len(tc.values))
			for i, v := range tc.values {
				rows[i] = []string{v}
			}
			sorted, _, err := Sort(context.Background(), grid([]string{"v"}, rows), []Spec{{Column: 0, Dir: tc.dir}})
			if err != nil {
				t.Fatalf("Sort: %v", err)
			}
			if got := column(sorted, 0); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("sorted column = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSortTwoColumns(t *testing.T) {
	g := grid([]string{"dept", "salary"}, [][]string{
		{"eng", "100"},
		{"sales", "90"},
		{"eng", "120"},
		{"sales", "80"},
	})

	sorted, desc, err := Sort(context.Background(), g, []Spec{
		{Column: 0, Dir: Ascending},
		{Column: 1, Dir: Descending},
	})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}

	want := [][]string{
		{"eng", "120"},
		{"eng", "100"},
		{"sales", "90"},
		{"sales", "80"},
	}
	if !reflect.DeepEqual(sorted.Rows, want) {
		t.Errorf("rows = %v, want %v", sorted.Rows, want)
	}
	if desc != `Sort by "dept" asc, "salary" desc` {
		t.Errorf("description = %q, want %q", desc, `Sort by "dept" asc, "salary" desc`)
	}
}

func TestSortStable(t *testing.T) {
	g := grid([]string{"k", "tag"}, [][]string{
		{"1", "first"},
		{"2", "x"},
		{"1", "second"},
		{"1", "third"},
	})

	sorted, _, err := Sort(context.Background(), g, []Spec{{Column: 0, Dir: Ascending}})
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if got := column(sorted, 1); !reflect.DeepEqual(got[:3], []string{"first", "second", "third"}) {
		t.Errorf("equal keys reordered: %v", got)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	g := grid([]string{"v"}, [][]string{{"b"}, {"a"}})

	if _, _, err := Sort(context.Background(), g, []Spec{{Column: 0, Dir: Ascending}}); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if !reflect.DeepEqual(column(g, 0), []string{"b", "a"}) {
		t.Errorf("input grid mutated: %v", g.Rows)
	}
}

func TestSortValidation(t *testing.T) {
	g := grid([]string{"a", "b"}, [][]string{{"1", "2"}})

	cases := []struct {
		name  string
		specs []Spec
	}{
		{"no specs", nil},
		{"too many specs", []Spec{{0, Ascending}, {1, Ascending}, {0, Descending}}},
		{"column out of range", []Spec{{5, Ascending}}},
		{"negative column", []Spec{{-1, Ascending}}},
		{"bad direction", []Spec{{0, "sideways"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := Sort(context.Background(), g, tc.specs); err == nil {
				t.Error("Sort err = nil, want error")
			}
		})
	}
}

func TestSortCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Sort(ctx, grid([]string{"a"}, [][]string{{"1"}}), []Spec{{0, Ascending}})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// ============================================================================
// Row and column moves
// ============================================================================

func TestMoveRow(t *testing.T) {
	g := grid([]string{"v"}, [][]string{{"a"}, {"b"}, {"c"}, {"d"}})

	moved, desc, err := MoveRow(g, 0, 2)
	if err != nil {
		t.Fatalf("MoveRow: %v", err)
	}
	if got := column(moved, 0); !reflect.DeepEqual(got, []string{"b", "c", "a", "d"}) {
		t.Errorf("rows = %v, want [b c a d]", got)
	}
	if desc != "Move row 1 to 3" {
		t.Errorf("description = %q, want %q", desc, "Move row 1 to 3")
	}

	// Moving toward the front.
	moved, _, err = MoveRow(g, 3, 0)
	if err != nil {
		t.Fatalf("MoveRow: %v", err)
	}
	if got := column(moved, 0); !reflect.DeepEqual(got, []string{"d", "a", "b", "c"}) {
		t.Errorf("rows = %v, want [d a b c]", got)
	}

	// Input untouched.
	if got := column(g, 0); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("input grid mutated: %v", got)
	}
}

func TestMoveRowSamePosition(t *testing.T) {
	g := grid([]string{"v"}, [][]string{{"a"}, {"b"}})
	moved, _, err := MoveRow(g, 1, 1)
	if err != nil {
		t.Fatalf("MoveRow: %v", err)
	}
	if !moved.Equal(g) {
		t.Errorf("rows = %v, want unchanged", moved.Rows)
	}
}

func TestMoveRowOutOfRange(t *testing.T) {
	g := grid([]string{"v"}, [][]string{{"a"}})
	if _, _, err := MoveRow(g, 1, 0); err == nil {
		t.Error("MoveRow(1, 0) err = nil, want error")
	}
	if _, _, err := MoveRow(g, 0, -1); err == nil {
		t.Error("MoveRow(0, -1) err = nil, want error")
	}
}

func TestMoveColumn(t *testing.T) {
	g := grid([]string{"a", "b", "c"}, [][]string{
		{"1", "2", "3"},
		{"4", "5", "6"},
	})

	moved, desc, err := MoveColumn(g, 0, 2)
	if err != nil {
		t.Fatalf("MoveColumn: %v", err)
	}
	if !reflect.DeepEqual(moved.Headers, []string{"b", "c", "a"}) {
		t.Errorf("headers = %v, want [b c a]", moved.Headers)
	}
	want := [][]string{{"2", "3", "1"}, {"5", "6", "4"}}
	if !reflect.DeepEqual(moved.Rows, want) {
		t.Errorf("rows = %v, want %v", moved.Rows, want)
	}
	if desc != `Move column "a" to 3` {
		t.Errorf("description = %q, want %q", desc, `Move column "a" to 3`)
	}

	// Input untouched.
	if !reflect.DeepEqual(g.Headers, []string{"a", "b", "c"}) {
		t.Errorf("input headers mutated: %v", g.Headers)
	}
}

func TestMoveColumnOutOfRange(t *testing.T) {
	g := grid([]string{"a"}, [][]string{{"1"}})
	if _, _, err := MoveColumn(g, 0, 1); err == nil {
		t.Error("MoveColumn(0, 1) err = nil, want error")
	}
}
