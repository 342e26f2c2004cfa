package engine

import (
	"errors"
	"testing"
)

func colPtr(c int) *int { return &c }

// ============================================================================
// Matching modes
// ============================================================================

func TestSearchSubstringVsWholeWord(t *testing.T) {
	cases := []struct {
		name  string
		cell  string
		query string
		opts  SearchOptions
		want  int
	}{
		{"substring hits inside longer word", "foobar", "foo", SearchOptions{}, 1},
		{"whole word misses inside longer word", "foobar", "foo", SearchOptions{WholeWord: true}, 0},
		{"whole word hits isolated token", "foo bar", "foo", SearchOptions{WholeWord: true}, 1},
		{"whole word hits last token", "bar foo", "foo", SearchOptions{WholeWord: true}, 1},
		{"whole word query with space never matches", "foo bar", "foo bar", SearchOptions{WholeWord: true}, 0},
		{"substring hits exact cell", "foo", "foo", SearchOptions{}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEditor(NewGrid([]string{"a"}, [][]string{{tc.cell}}))
			e.SetQuery(tc.query, tc.opts)
			got, err := e.PerformSearch()
			if err != nil {
				t.Fatalf("PerformSearch: %v", err)
			}
			if got != tc.want {
				t.Errorf("match count = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSearchCaseSensitivity(t *testing.T) {
	cases := []struct {
		name string
		opts SearchOptions
		want int
	}{
		{"insensitive by default", SearchOptions{}, 1},
		{"sensitive misses different case", SearchOptions{CaseSensitive: true}, 0},
		{"insensitive whole word", SearchOptions{WholeWord: true}, 1},
		{"insensitive regex", SearchOptions{Regex: true}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEditor(NewGrid([]string{"a"}, [][]string{{"Hello world"}}))
			e.SetQuery("hello", tc.opts)
			got, err := e.PerformSearch()
			if err != nil {
				t.Fatalf("PerformSearch: %v", err)
			}
			if got != tc.want {
				t.Errorf("match count = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSearchRegex(t *testing.T) {
	grid := NewGrid([]string{"a", "b"}, [][]string{
		{"item-1", "note"},
		{"item-22", "item"},
	})
	e := NewEditor(grid)

	e.SetQuery(`item-\d+`, SearchOptions{Regex: true})
	got, err := e.PerformSearch()
	if err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}
	if got != 2 {
		t.Errorf("match count = %d, want 2", got)
	}
	for i, m := range e.Matches() {
		if m.Col != 0 {
			t.Errorf("match %d at column %d, want 0", i, m.Col)
		}
	}
}

func TestSearchInvalidRegexRecovers(t *testing.T) {
	e := NewEditor(testGrid())

	e.SetQuery("(", SearchOptions{Regex: true})
	got, err := e.PerformSearch()
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("PerformSearch error = %v, want ErrInvalidPattern", err)
	}
	if got != 0 || len(e.Matches()) != 0 {
		t.Errorf("match count = %d (len %d), want 0", got, len(e.Matches()))
	}
	if e.CurrentMatch() != nil {
		t.Error("CurrentMatch() != nil after failed scan")
	}

	// The editor stays usable; a corrected query scans normally.
	e.SetQuery(`\d`, SearchOptions{Regex: true})
	got, err = e.PerformSearch()
	if err != nil {
		t.Fatalf("PerformSearch after recovery: %v", err)
	}
	if got != 9 {
		t.Errorf("match count = %d, want 9", got)
	}
}

func TestSearchColumnFilter(t *testing.T) {
	e := NewEditor(testGrid())

	e.SetQuery(`\d`, SearchOptions{Regex: true, Column: colPtr(1)})
	got, err := e.PerformSearch()
	if err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}
	if got != 3 {
		t.Fatalf("match count = %d, want 3", got)
	}
	for i, m := range e.Matches() {
		if m.Col != 1 {
			t.Errorf("match %d at column %d, want 1", i, m.Col)
		}
		if m.Row != i {
			t.Errorf("match %d at row %d, want %d", i, m.Row, i)
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := NewEditor(testGrid())

	e.SetQuery("", SearchOptions{})
	got, err := e.PerformSearch()
	if err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}
	if got != 0 {
		t.Errorf("match count = %d, want 0", got)
	}
	if e.SearchActive() {
		t.Error("SearchActive() = true for empty query, want false")
	}
}

// ============================================================================
// Ordering and navigation
// ============================================================================

func TestSearchOrderRowMajorAndSelectsFirst(t *testing.T) {
	grid := NewGrid([]string{"a", "b"}, [][]string{
		{"x", "hit"},
		{"hit", "hit"},
	})
	e := NewEditor(grid)

	e.SetQuery("hit", SearchOptions{})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}

	wantOrder := []struct{ row, col int }{{0, 1}, {1, 0}, {1, 1}}
	matches := e.Matches()
	if len(matches) != len(wantOrder) {
		t.Fatalf("len(matches) = %d, want %d", len(matches), len(wantOrder))
	}
	for i, w := range wantOrder {
		if matches[i].Row != w.row || matches[i].Col != w.col {
			t.Errorf("matches[%d] = (%d, %d), want (%d, %d)",
				i, matches[i].Row, matches[i].Col, w.row, w.col)
		}
	}

	sel, ok := e.Selection().(SingleCell)
	if !ok {
		t.Fatalf("selection = %T, want SingleCell", e.Selection())
	}
	if sel.Cell.Row != 0 || sel.Cell.Col != 1 {
		t.Errorf("selection = (%d, %d), want first match (0, 1)", sel.Cell.Row, sel.Cell.Col)
	}
	if e.MatchCursor() != 0 {
		t.Errorf("MatchCursor() = %d, want 0", e.MatchCursor())
	}
}

func TestSearchCyclicNavigation(t *testing.T) {
	grid := NewGrid([]string{"a"}, [][]string{{"hit"}, {"hit"}, {"hit"}})
	e := NewEditor(grid)

	e.SetQuery("hit", SearchOptions{})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}

	// Forward wraps past the end.
	for _, want := range []int{1, 2, 0, 1} {
		m := e.NextMatch()
		if m == nil {
			t.Fatal("NextMatch() = nil, want match")
		}
		if m.Row != want {
			t.Errorf("NextMatch() row = %d, want %d", m.Row, want)
		}
		if e.MatchCursor() != want {
			t.Errorf("MatchCursor() = %d, want %d", e.MatchCursor(), want)
		}
	}

	// Backward wraps past the start.
	for _, want := range []int{0, 2, 1} {
		m := e.PreviousMatch()
		if m == nil {
			t.Fatal("PreviousMatch() = nil, want match")
		}
		if m.Row != want {
			t.Errorf("PreviousMatch() row = %d, want %d", m.Row, want)
		}
	}

	// Navigation tracks the selection.
	sel, ok := e.Selection().(SingleCell)
	if !ok || sel.Cell.Row != 1 {
		t.Errorf("selection = %#v, want SingleCell at row 1", e.Selection())
	}
}

func TestSearchNavigationWithoutMatches(t *testing.T) {
	e := NewEditor(testGrid())

	e.SetQuery("absent", SearchOptions{})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}
	if m := e.NextMatch(); m != nil {
		t.Errorf("NextMatch() = %#v, want nil", m)
	}
	if m := e.PreviousMatch(); m != nil {
		t.Errorf("PreviousMatch() = %#v, want nil", m)
	}
}

// ============================================================================
// Staleness and undo/redo re-scan
// ============================================================================

func TestMatchesStaleUntilUndoOrRescan(t *testing.T) {
	e := NewEditor(testGrid())

	e.SetQuery("5", SearchOptions{})
	if n, _ := e.PerformSearch(); n != 1 {
		t.Fatalf("initial match count = %d, want 1", n)
	}

	// An ordinary mutation leaves the scan untouched.
	if err := e.UpdateCell(0, 0, "5"); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	if got := len(e.Matches()); got != 1 {
		t.Errorf("len(matches) after mutation = %d, want stale 1", got)
	}

	// An explicit re-scan picks up the new cell.
	if n, _ := e.PerformSearch(); n != 2 {
		t.Errorf("match count after re-scan = %d, want 2", n)
	}

	// Undo re-runs the scan against the restored grid.
	e.Undo()
	if got := len(e.Matches()); got != 1 {
		t.Errorf("len(matches) after undo = %d, want 1", got)
	}

	// Redo re-runs it again.
	e.Redo()
	if got := len(e.Matches()); got != 2 {
		t.Errorf("len(matches) after redo = %d, want 2", got)
	}
}

// ============================================================================
// Replace current
// ============================================================================

func TestReplaceCurrentAdvances(t *testing.T) {
	grid := NewGrid([]string{"a", "b"}, [][]string{
		{"foo x", "-"},
		{"-", "foo y"},
	})
	e := NewEditor(grid)

	e.SetQuery("foo", SearchOptions{})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}

	ok, err := e.ReplaceCurrent("bar")
	if err != nil {
		t.Fatalf("ReplaceCurrent: %v", err)
	}
	if !ok {
		t.Fatal("ReplaceCurrent = false, want true")
	}
	if got, _ := e.Grid().Cell(0, 0); got != "bar x" {
		t.Errorf("cell (0,0) = %q, want %q", got, "bar x")
	}
	if m := e.CurrentMatch(); m == nil || m.Row != 1 || m.Col != 1 {
		t.Errorf("CurrentMatch() = %#v, want (1, 1)", m)
	}

	entries := e.HistoryEntries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Kind != ActionBulkReplace {
		t.Errorf("entry kind = %q, want %q", entries[0].Kind, ActionBulkReplace)
	}
	if entries[0].Description != "Replace text" {
		t.Errorf("entry description = %q, want %q", entries[0].Description, "Replace text")
	}

	// Second call consumes the remaining match.
	if ok, _ = e.ReplaceCurrent("bar"); !ok {
		t.Fatal("second ReplaceCurrent = false, want true")
	}
	if got, _ := e.Grid().Cell(1, 1); got != "bar y" {
		t.Errorf("cell (1,1) = %q, want %q", got, "bar y")
	}

	// Both stale matches now point at replaced cells.
	if ok, _ = e.ReplaceCurrent("bar"); ok {
		t.Error("third ReplaceCurrent = true, want false on exhausted matches")
	}
}

func TestReplaceCurrentFirstOccurrenceOnly(t *testing.T) {
	e := NewEditor(NewGrid([]string{"a"}, [][]string{{"foo foo"}}))

	e.SetQuery("foo", SearchOptions{})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}
	if ok, err := e.ReplaceCurrent("bar"); err != nil || !ok {
		t.Fatalf("ReplaceCurrent = %v, %v, want true, nil", ok, err)
	}
	if got, _ := e.Grid().Cell(0, 0); got != "bar foo" {
		t.Errorf("cell = %q, want %q", got, "bar foo")
	}
}

func TestReplaceCurrentWholeWordSparesLongerToken(t *testing.T) {
	e := NewEditor(NewGrid([]string{"a"}, [][]string{{"foobar foo"}}))

	e.SetQuery("foo", SearchOptions{WholeWord: true})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}
	if ok, err := e.ReplaceCurrent("baz"); err != nil || !ok {
		t.Fatalf("ReplaceCurrent = %v, %v, want true, nil", ok, err)
	}
	if got, _ := e.Grid().Cell(0, 0); got != "foobar baz" {
		t.Errorf("cell = %q, want %q", got, "foobar baz")
	}
}

func TestReplaceCurrentWithoutMatch(t *testing.T) {
	e := NewEditor(testGrid())

	if ok, err := e.ReplaceCurrent("x"); ok || err != nil {
		t.Errorf("ReplaceCurrent = %v, %v without search, want false, nil", ok, err)
	}
	if len(e.HistoryEntries()) != 0 {
		t.Error("no-op replace recorded a history entry")
	}
}

// ============================================================================
// Replace all
// ============================================================================

func TestReplaceAllSingleHistoryEntry(t *testing.T) {
	grid := NewGrid([]string{"a", "b"}, [][]string{
		{"foo", "foo bar"},
		{"x", "foo"},
	})
	e := NewEditor(grid)

	e.SetQuery("foo", SearchOptions{})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}

	n, err := e.ReplaceAllMatches("baz")
	if err != nil {
		t.Fatalf("ReplaceAllMatches: %v", err)
	}
	if n != 3 {
		t.Errorf("changed cells = %d, want 3", n)
	}

	wantRows := [][]string{{"baz", "baz bar"}, {"x", "baz"}}
	for r, row := range wantRows {
		for c, want := range row {
			if got, _ := e.Grid().Cell(r, c); got != want {
				t.Errorf("cell (%d,%d) = %q, want %q", r, c, got, want)
			}
		}
	}

	entries := e.HistoryEntries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want single bulk entry", len(entries))
	}
	if entries[0].Description != "Replace all (3 matches)" {
		t.Errorf("entry description = %q, want %q", entries[0].Description, "Replace all (3 matches)")
	}

	// Search state is fully cleared.
	if e.SearchActive() {
		t.Error("SearchActive() = true after replace all, want false")
	}
	if len(e.Matches()) != 0 || e.CurrentMatch() != nil {
		t.Error("matches survive replace all, want cleared")
	}
	if q, _ := e.SearchQuery(); q != "" {
		t.Errorf("query = %q after replace all, want empty", q)
	}

	// One undo restores every replaced cell.
	if !e.Undo() {
		t.Fatal("Undo() = false, want true")
	}
	if got, _ := e.Grid().Cell(0, 0); got != "foo" {
		t.Errorf("cell (0,0) after undo = %q, want %q", got, "foo")
	}
	if got, _ := e.Grid().Cell(1, 1); got != "foo" {
		t.Errorf("cell (1,1) after undo = %q, want %q", got, "foo")
	}
}

func TestReplaceAllWithoutMatches(t *testing.T) {
	e := NewEditor(testGrid())

	e.SetQuery("absent", SearchOptions{})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}
	n, err := e.ReplaceAllMatches("x")
	if err != nil {
		t.Fatalf("ReplaceAllMatches: %v", err)
	}
	if n != 0 {
		t.Errorf("changed cells = %d, want 0", n)
	}
	if len(e.HistoryEntries()) != 0 {
		t.Error("no-op replace all recorded a history entry")
	}
}

func TestReplaceAllRegexGroupExpansion(t *testing.T) {
	grid := NewGrid([]string{"a"}, [][]string{{"12-34"}, {"5-6 7-8"}})
	e := NewEditor(grid)

	e.SetQuery(`(\d+)-(\d+)`, SearchOptions{Regex: true})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}
	n, err := e.ReplaceAllMatches("$2:$1")
	if err != nil {
		t.Fatalf("ReplaceAllMatches: %v", err)
	}
	if n != 2 {
		t.Errorf("changed cells = %d, want 2", n)
	}
	if got, _ := e.Grid().Cell(0, 0); got != "34:12" {
		t.Errorf("cell (0,0) = %q, want %q", got, "34:12")
	}
	// Only the first occurrence in each cell is touched.
	if got, _ := e.Grid().Cell(1, 0); got != "6:5 7-8" {
		t.Errorf("cell (1,0) = %q, want %q", got, "6:5 7-8")
	}
}

// ============================================================================
// Clearing
// ============================================================================

func TestClearSearch(t *testing.T) {
	e := NewEditor(testGrid())

	e.SetQuery("5", SearchOptions{})
	if _, err := e.PerformSearch(); err != nil {
		t.Fatalf("PerformSearch: %v", err)
	}
	e.ClearSearch()

	if e.SearchActive() {
		t.Error("SearchActive() = true after clear, want false")
	}
	if len(e.Matches()) != 0 || e.MatchCursor() != -1 {
		t.Errorf("matches = %d, cursor = %d after clear, want 0, -1", len(e.Matches()), e.MatchCursor())
	}
	if q, _ := e.SearchQuery(); q != "" {
		t.Errorf("query = %q after clear, want empty", q)
	}
}
