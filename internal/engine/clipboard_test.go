package engine

import (
	"reflect"
	"testing"
)

// ============================================================================
// Copy / cut
// ============================================================================

func TestCopySelectionSingleCell(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectCell(1, 1)

	if !e.CopySelection() {
		t.Fatal("CopySelection() = false, want true")
	}
	want := [][]string{{"5"}}
	if !reflect.DeepEqual(e.Clipboard(), want) {
		t.Errorf("clipboard = %v, want %v", e.Clipboard(), want)
	}
	if e.CanUndo() {
		t.Error("CanUndo() = true after copy, want false (copy records no history)")
	}
	if e.Dirty() {
		t.Error("Dirty() = true after copy, want false")
	}
}

func TestCopySelectionRange(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectRange(0, 0, 1, 1)

	if !e.CopySelection() {
		t.Fatal("CopySelection() = false, want true")
	}
	want := [][]string{{"1", "2"}, {"4", "5"}}
	if !reflect.DeepEqual(e.Clipboard(), want) {
		t.Errorf("clipboard = %v, want %v", e.Clipboard(), want)
	}
}

func TestCopyWithoutSelection(t *testing.T) {
	e := NewEditor(testGrid())
	if e.CopySelection() {
		t.Error("CopySelection() = true with no selection, want false")
	}
	if e.Clipboard() != nil {
		t.Errorf("clipboard = %v, want nil", e.Clipboard())
	}
}

func TestCutSelection(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectRange(0, 0, 0, 1)

	if !e.CutSelection() {
		t.Fatal("CutSelection() = false, want true")
	}
	want := [][]string{{"1", "2"}}
	if !reflect.DeepEqual(e.Clipboard(), want) {
		t.Errorf("clipboard = %v, want %v", e.Clipboard(), want)
	}
	if got, _ := e.Grid().Cell(0, 0); got != "" {
		t.Errorf("cell (0,0) = %q after cut, want empty", got)
	}
	if got, _ := e.Grid().Cell(0, 2); got != "3" {
		t.Errorf("cell (0,2) = %q after cut, want %q (outside selection)", got, "3")
	}
	if !e.CanUndo() {
		t.Error("CanUndo() = false after cut, want true")
	}
}

func TestSetClipboard(t *testing.T) {
	e := NewEditor(testGrid())

	block := [][]string{{"x", "y"}}
	e.SetClipboard(block)
	block[0][0] = "mutated"

	want := [][]string{{"x", "y"}}
	if !reflect.DeepEqual(e.Clipboard(), want) {
		t.Errorf("clipboard = %v, want %v (caller's block must not alias)", e.Clipboard(), want)
	}
	if e.CanUndo() {
		t.Error("CanUndo() = true after SetClipboard, want false")
	}

	e.SetClipboard(nil)
	if e.Clipboard() != nil {
		t.Errorf("clipboard = %v after SetClipboard(nil), want nil", e.Clipboard())
	}
}

// ============================================================================
// Paste
// ============================================================================

func TestPasteAt(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectRange(0, 0, 1, 1)
	e.CopySelection()

	if !e.PasteAt(1, 1) {
		t.Fatal("PasteAt() = false, want true")
	}
	want := [][]string{
		{"1", "2", "3"},
		{"4", "1", "2"},
		{"7", "4", "5"},
	}
	if !reflect.DeepEqual(e.Grid().Rows, want) {
		t.Errorf("rows = %v, want %v", e.Grid().Rows, want)
	}
}

func TestPasteGrowsRows(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectRange(0, 0, 1, 0)
	e.CopySelection()

	if !e.PasteAt(2, 0) {
		t.Fatal("PasteAt() = false, want true")
	}
	if e.Grid().RowCount() != 4 {
		t.Fatalf("RowCount() = %d, want 4", e.Grid().RowCount())
	}
	want := []string{"4", "", ""}
	if !reflect.DeepEqual(e.Grid().Rows[3], want) {
		t.Errorf("grown row = %v, want %v", e.Grid().Rows[3], want)
	}
}

func TestPasteDropsColumnsPastWidth(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectRange(0, 0, 0, 2)
	e.CopySelection()

	if !e.PasteAt(1, 1) {
		t.Fatal("PasteAt() = false, want true")
	}
	// Only two of three clipboard cells fit; no column growth.
	if e.Grid().ColumnCount() != 3 {
		t.Fatalf("ColumnCount() = %d, want 3", e.Grid().ColumnCount())
	}
	want := []string{"4", "1", "2"}
	if !reflect.DeepEqual(e.Grid().Rows[1], want) {
		t.Errorf("row = %v, want %v", e.Grid().Rows[1], want)
	}
}

func TestPasteNoOps(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Editor)
		row   int
		col   int
	}{
		{
			name:  "empty clipboard",
			setup: func(e *Editor) {},
			row:   0, col: 0,
		},
		{
			name: "negative row",
			setup: func(e *Editor) {
				e.SelectCell(0, 0)
				e.CopySelection()
			},
			row: -1, col: 0,
		},
		{
			name: "column outside width",
			setup: func(e *Editor) {
				e.SelectCell(0, 0)
				e.CopySelection()
			},
			row: 0, col: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(testGrid())
			tt.setup(e)
			undoable := e.CanUndo()

			if e.PasteAt(tt.row, tt.col) {
				t.Error("PasteAt() = true, want false (silent no-op)")
			}
			if e.CanUndo() != undoable {
				t.Error("paste no-op recorded a history entry")
			}
		})
	}
}

func TestPasteIdempotentOnSameTarget(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectRange(0, 0, 1, 1)
	e.CopySelection()

	if !e.PasteAt(1, 1) {
		t.Fatal("first PasteAt() = false, want true")
	}
	first := e.Grid().Clone()

	if !e.PasteAt(1, 1) {
		t.Fatal("second PasteAt() = false, want true")
	}
	if !e.Grid().Equal(first) {
		t.Errorf("second paste produced %v, want identical grid %v", e.Grid().Rows, first.Rows)
	}
}

func TestPasteUsesSelectionTopLeft(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectCell(0, 0)
	e.CopySelection()

	e.SelectRange(2, 2, 1, 1)
	if !e.Paste() {
		t.Fatal("Paste() = false, want true")
	}
	// The normalized top-left of the selection is (1, 1).
	if got, _ := e.Grid().Cell(1, 1); got != "1" {
		t.Errorf("cell (1,1) = %q, want %q", got, "1")
	}
}

// ============================================================================
// Clear
// ============================================================================

func TestClearCells(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectRange(0, 0, 1, 1)

	if !e.ClearCells() {
		t.Fatal("ClearCells() = false, want true")
	}
	want := [][]string{
		{"", "", "3"},
		{"", "", "6"},
		{"7", "8", "9"},
	}
	if !reflect.DeepEqual(e.Grid().Rows, want) {
		t.Errorf("rows = %v, want %v", e.Grid().Rows, want)
	}
}

func TestClearCellsWithoutSelection(t *testing.T) {
	e := NewEditor(testGrid())
	if e.ClearCells() {
		t.Error("ClearCells() = true with no selection, want false")
	}
	if e.CanUndo() {
		t.Error("CanUndo() = true after no-op clear, want false")
	}
}
