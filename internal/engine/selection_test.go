package engine

import "testing"

// ============================================================================
// Test fixtures
// ============================================================================

func testGrid() Grid {
	return NewGrid(
		[]string{"a", "b", "c"},
		[][]string{
			{"1", "2", "3"},
			{"4", "5", "6"},
			{"7", "8", "9"},
		},
	)
}

// ============================================================================
// Selection exclusivity
// ============================================================================

func TestSelectionExclusivity(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(e *Editor)
		wantRange bool
	}{
		{
			name:      "select cell",
			setup:     func(e *Editor) { e.SelectCell(1, 1) },
			wantRange: false,
		},
		{
			name:      "select range",
			setup:     func(e *Editor) { e.SelectRange(0, 0, 1, 1) },
			wantRange: true,
		},
		{
			name:      "select row",
			setup:     func(e *Editor) { e.SelectRow(2) },
			wantRange: true,
		},
		{
			name:      "select column",
			setup:     func(e *Editor) { e.SelectColumn(0) },
			wantRange: true,
		},
		{
			name:      "select all",
			setup:     func(e *Editor) { e.SelectAll() },
			wantRange: true,
		},
		{
			name: "cell after range",
			setup: func(e *Editor) {
				e.SelectRange(0, 0, 2, 2)
				e.SelectCell(1, 1)
			},
			wantRange: false,
		},
		{
			name: "range after cell",
			setup: func(e *Editor) {
				e.SelectCell(1, 1)
				e.SelectRange(0, 0, 1, 1)
			},
			wantRange: true,
		},
		{
			name: "extend from cell",
			setup: func(e *Editor) {
				e.SelectCell(0, 0)
				e.ExtendSelection(1, 1)
			},
			wantRange: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(testGrid())
			tt.setup(e)

			sel := e.Selection()
			if sel == nil {
				t.Fatal("Selection() = nil, want a selection")
			}
			switch sel.(type) {
			case SingleCell:
				if tt.wantRange {
					t.Errorf("Selection() = SingleCell, want Range")
				}
			case Range:
				if !tt.wantRange {
					t.Errorf("Selection() = Range, want SingleCell")
				}
			default:
				t.Errorf("Selection() has unexpected type %T", sel)
			}
		})
	}
}

// ============================================================================
// Anchor/focus semantics
// ============================================================================

func TestExtendSelectionAnchorStability(t *testing.T) {
	e := NewEditor(testGrid())

	e.SelectCell(0, 0)
	e.ExtendSelection(1, 1)

	r, ok := e.Selection().(Range)
	if !ok {
		t.Fatalf("Selection() = %T, want Range", e.Selection())
	}
	if r.Anchor.Row != 0 || r.Anchor.Col != 0 {
		t.Errorf("anchor after first extend = (%d, %d), want (0, 0)", r.Anchor.Row, r.Anchor.Col)
	}

	e.ExtendSelection(2, 2)
	r, ok = e.Selection().(Range)
	if !ok {
		t.Fatalf("Selection() = %T, want Range", e.Selection())
	}
	if r.Anchor.Row != 0 || r.Anchor.Col != 0 {
		t.Errorf("anchor after second extend = (%d, %d), want (0, 0)", r.Anchor.Row, r.Anchor.Col)
	}
	if r.Focus.Row != 2 || r.Focus.Col != 2 {
		t.Errorf("focus = (%d, %d), want (2, 2)", r.Focus.Row, r.Focus.Col)
	}
}

func TestExtendSelectionNormalizesBounds(t *testing.T) {
	e := NewEditor(testGrid())

	// Extend up and to the left: start/end must still be min/max corners.
	e.SelectCell(2, 2)
	e.ExtendSelection(0, 1)

	top, left, bottom, right := e.Selection().Bounds()
	if top != 0 || left != 1 || bottom != 2 || right != 2 {
		t.Errorf("Bounds() = (%d, %d, %d, %d), want (0, 1, 2, 2)", top, left, bottom, right)
	}

	r := e.Selection().(Range)
	if r.Anchor.Row != 2 || r.Anchor.Col != 2 {
		t.Errorf("anchor = (%d, %d), want (2, 2)", r.Anchor.Row, r.Anchor.Col)
	}
}

func TestExtendSelectionWithoutSelection(t *testing.T) {
	e := NewEditor(testGrid())

	e.ExtendSelection(1, 2)

	sc, ok := e.Selection().(SingleCell)
	if !ok {
		t.Fatalf("Selection() = %T, want SingleCell", e.Selection())
	}
	if sc.Cell.Row != 1 || sc.Cell.Col != 2 {
		t.Errorf("cell = (%d, %d), want (1, 2)", sc.Cell.Row, sc.Cell.Col)
	}
	if sc.Cell.Value != "6" {
		t.Errorf("cell value = %q, want %q", sc.Cell.Value, "6")
	}
}

// ============================================================================
// Row/column/all selections
// ============================================================================

func TestSelectRowSpansAllColumns(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectRow(1)

	r, ok := e.Selection().(Range)
	if !ok {
		t.Fatalf("Selection() = %T, want Range", e.Selection())
	}
	if r.Kind != RangeRows {
		t.Errorf("kind = %q, want %q", r.Kind, RangeRows)
	}
	top, left, bottom, right := r.Bounds()
	if top != 1 || left != 0 || bottom != 1 || right != 2 {
		t.Errorf("Bounds() = (%d, %d, %d, %d), want (1, 0, 1, 2)", top, left, bottom, right)
	}
}

func TestSelectColumnSpansAllRows(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectColumn(2)

	r, ok := e.Selection().(Range)
	if !ok {
		t.Fatalf("Selection() = %T, want Range", e.Selection())
	}
	if r.Kind != RangeColumns {
		t.Errorf("kind = %q, want %q", r.Kind, RangeColumns)
	}
	top, left, bottom, right := r.Bounds()
	if top != 0 || left != 2 || bottom != 2 || right != 2 {
		t.Errorf("Bounds() = (%d, %d, %d, %d), want (0, 2, 2, 2)", top, left, bottom, right)
	}
}

func TestSelectAllEmptyGridClearsSelection(t *testing.T) {
	e := NewEditor(NewGrid([]string{"a"}, nil))
	e.SelectCell(0, 0)
	e.SelectAll()

	if e.Selection() != nil {
		t.Errorf("Selection() = %v, want nil on empty grid", e.Selection())
	}
}

func TestClearSelection(t *testing.T) {
	e := NewEditor(testGrid())
	e.SelectCell(0, 0)
	e.ClearSelection()

	if e.Selection() != nil {
		t.Errorf("Selection() = %v, want nil", e.Selection())
	}
}
