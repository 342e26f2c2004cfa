package analysis

import (
	"reflect"
	"testing"
)

// ============================================================================
// Cell-wise actions
// ============================================================================

func TestApplyTrimWhitespace(t *testing.T) {
	g := grid([]string{"a", "b"}, [][]string{
		{"  x  ", "y"},
		{"z", " w "},
	})

	out, res, err := Apply(g, Params{Action: ActionTrimWhitespace})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := [][]string{{"x", "y"}, {"z", "w"}}
	if !reflect.DeepEqual(out.Rows, want) {
		t.Errorf("rows = %v, want %v", out.Rows, want)
	}
	if res.CellsModified != 2 || res.RowsAffected != 2 {
		t.Errorf("result = %+v, want 2 cells over 2 rows", res)
	}
	if len(res.Modifications) != 2 {
		t.Fatalf("modifications = %v, want 2", res.Modifications)
	}
	if m := res.Modifications[0]; m.Row != 0 || m.Col != 0 || m.Old != "  x  " || m.New != "x" {
		t.Errorf("modification = %+v", m)
	}

	// Input untouched.
	if g.Rows[0][0] != "  x  " {
		t.Errorf("input grid mutated: %v", g.Rows)
	}
}

func TestApplyTrimWhitespaceColumnFilter(t *testing.T) {
	g := grid([]string{"a", "b"}, [][]string{{" x ", " y "}})

	out, res, err := Apply(g, Params{Action: ActionTrimWhitespace, Columns: []int{1}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Rows[0][0] != " x " || out.Rows[0][1] != "y" {
		t.Errorf("rows = %v, want only column 1 trimmed", out.Rows)
	}
	if res.CellsModified != 1 {
		t.Errorf("cells modified = %d, want 1", res.CellsModified)
	}
}

func TestApplyNormalizeText(t *testing.T) {
	g := grid([]string{"a"}, [][]string{{"  hello\t\tworld \n"}})

	out, _, err := Apply(g, Params{Action: ActionNormalizeText})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Rows[0][0] != "hello world" {
		t.Errorf("normalized = %q, want %q", out.Rows[0][0], "hello world")
	}
}

// ============================================================================
// Row-level actions
// ============================================================================

func TestApplyRemoveDuplicates(t *testing.T) {
	g := grid([]string{"a", "b"}, [][]string{
		{"1", "x"},
		{"2", "y"},
		{"1", "x"},
		{"1", "x"},
	})

	out, res, err := Apply(g, Params{Action: ActionRemoveDuplicates})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := [][]string{{"1", "x"}, {"2", "y"}}
	if !reflect.DeepEqual(out.Rows, want) {
		t.Errorf("rows = %v, want %v", out.Rows, want)
	}
	if res.RowsAffected != 2 {
		t.Errorf("rows affected = %d, want 2", res.RowsAffected)
	}
}

// ============================================================================
// Fill missing
// ============================================================================

func TestApplyFillMissingCustom(t *testing.T) {
	g := grid([]string{"a", "b"}, [][]string{
		{"", "1"},
		{"x", ""},
	})

	out, res, err := Apply(g, Params{Action: ActionFillMissing, FillMethod: FillCustom, FillValue: "N/A"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := [][]string{{"N/A", "1"}, {"x", "N/A"}}
	if !reflect.DeepEqual(out.Rows, want) {
		t.Errorf("rows = %v, want %v", out.Rows, want)
	}
	if res.CellsModified != 2 || res.RowsAffected != 2 {
		t.Errorf("result = %+v, want 2 cells over 2 rows", res)
	}
}

func TestApplyFillMissingForward(t *testing.T) {
	g := grid([]string{"a"}, [][]string{
		{""},
		{"x"},
		{""},
		{""},
	})

	out, _, err := Apply(g, Params{Action: ActionFillMissing, FillMethod: FillForward})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// First row has nothing above; the rest cascade.
	want := [][]string{{""}, {"x"}, {"x"}, {"x"}}
	if !reflect.DeepEqual(out.Rows, want) {
		t.Errorf("rows = %v, want %v", out.Rows, want)
	}
}

func TestApplyFillMissingMean(t *testing.T) {
	g := grid([]string{"v"}, [][]string{
		{"10"},
		{""},
		{"20"},
	})

	out, _, err := Apply(g, Params{Action: ActionFillMissing, FillMethod: FillMean})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Rows[1][0] != "15.00" {
		t.Errorf("filled value = %q, want %q", out.Rows[1][0], "15.00")
	}
}

func TestApplyFillMissingMeanNonNumericColumn(t *testing.T) {
	g := grid([]string{"v"}, [][]string{{"x"}, {""}})

	out, res, err := Apply(g, Params{Action: ActionFillMissing, FillMethod: FillMean})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Rows[1][0] != "" || res.CellsModified != 0 {
		t.Errorf("non-numeric column filled: %v", out.Rows)
	}
}

func TestApplyFillMissingUnknownMethod(t *testing.T) {
	g := grid([]string{"a"}, [][]string{{""}})
	if _, _, err := Apply(g, Params{Action: ActionFillMissing, FillMethod: "magic"}); err == nil {
		t.Error("Apply err = nil, want error for unknown fill method")
	}
}

// ============================================================================
// Standardize format
// ============================================================================

func TestApplyStandardizeFormat(t *testing.T) {
	cases := []struct {
		name   string
		format string
		in     string
		want   string
	}{
		{"date us", FormatDate, "01/15/2024", "2024-01-15"},
		{"date compact", FormatDate, "20240115", "2024-01-15"},
		{"date unparseable kept", FormatDate, "soon", "soon"},
		{"number currency", FormatNumber, "$1,234.50", "1234.5"},
		{"number excel prefix", FormatNumber, `="99"`, "99"},
		{"number unparseable kept", FormatNumber, "n/a", "n/a"},
		{"phone dashes", FormatPhone, "555-123-4567", "(555) 123-4567"},
		{"phone country code", FormatPhone, "1-555-123-4567", "(555) 123-4567"},
		{"phone short kept", FormatPhone, "12345", "12345"},
		{"email", FormatEmail, " Bob@Example.COM ", "bob@example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := grid([]string{"v"}, [][]string{{tc.in}})
			out, _, err := Apply(g, Params{Action: ActionStandardizeFormat, Format: tc.format})
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := out.Rows[0][0]; got != tc.want {
				t.Errorf("standardize %s(%q) = %q, want %q", tc.format, tc.in, got, tc.want)
			}
		})
	}
}

func TestApplyStandardizeFormatUnknown(t *testing.T) {
	g := grid([]string{"a"}, [][]string{{"x"}})
	if _, _, err := Apply(g, Params{Action: ActionStandardizeFormat, Format: "roman"}); err == nil {
		t.Error("Apply err = nil, want error for unknown format")
	}
}

// ============================================================================
// Remove outliers
// ============================================================================

func TestApplyRemoveOutliers(t *testing.T) {
	g := grid([]string{"v", "note"}, [][]string{
		{"10", "a"},
		{"12", "b"},
		{"11", "c"},
		{"13", "d"},
		{"1000", "e"},
	})

	out, res, err := Apply(g, Params{Action: ActionRemoveOutliers, Columns: []int{0}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Rows[4][0] != "" {
		t.Errorf("outlier cell = %q, want blanked", out.Rows[4][0])
	}
	if out.Rows[4][1] != "e" {
		t.Errorf("row structure changed: %v", out.Rows[4])
	}
	if res.CellsModified != 1 || res.RowsAffected != 1 {
		t.Errorf("result = %+v, want 1 cell in 1 row", res)
	}
}

func TestApplyUnknownAction(t *testing.T) {
	g := grid([]string{"a"}, [][]string{{"x"}})
	if _, _, err := Apply(g, Params{Action: "transmogrify"}); err == nil {
		t.Error("Apply err = nil, want error for unknown action")
	}
}
