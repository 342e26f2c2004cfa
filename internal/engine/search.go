package engine

// search.go implements the query matcher and scoped replacement. A scan is a
// point-in-time snapshot of matching cells in row-major order; ordinary
// mutations leave it stale, undo/redo re-run it. Replacements route through
// the history log as bulk-replace entries.

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// ErrInvalidPattern is returned by PerformSearch when the query does not
// compile in regex mode. The scan aborts with zero matches; nothing panics.
var ErrInvalidPattern = errors.New("invalid search pattern")

// SearchOptions controls how the query is matched.
type SearchOptions struct {
	CaseSensitive bool `json:"caseSensitive"`
	WholeWord     bool `json:"wholeWord"`
	Regex         bool `json:"regex"`

	// Column restricts the scan to a single column when set.
	Column *int `json:"column,omitempty"`
}

type searchState struct {
	query   string
	opts    SearchOptions
	re      *regexp.Regexp
	matches []CellRef
	cursor  int
	active  bool
}

// SetQuery stores the query and options without scanning.
func (e *Editor) SetQuery(query string, opts SearchOptions) {
	e.search.query = query
	e.search.opts = opts
	e.search.re = nil
}

// PerformSearch scans the grid for the stored query and returns the match
// count. Matches are ordered row-major, then column within row; the first
// match, if any, becomes the active selection. In regex mode an invalid
// pattern aborts the scan with zero matches and ErrInvalidPattern.
func (e *Editor) PerformSearch() (int, error) {
	e.search.matches = nil
	e.search.cursor = -1
	e.search.active = false
	e.search.re = nil

	if e.search.query == "" {
		return 0, nil
	}
	e.search.active = true

	if e.search.opts.Regex {
		pattern := e.search.query
		if !e.search.opts.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		e.search.re = re
	}

	for r, row := range e.grid.Rows {
		for c := range e.grid.Headers {
			if col := e.search.opts.Column; col != nil && *col != c {
				continue
			}
			var v string
			if c < len(row) {
				v = row[c]
			}
			if e.matchValue(v) {
				e.search.matches = append(e.search.matches, CellRef{Row: r, Col: c, Value: v})
			}
		}
	}

	if len(e.search.matches) > 0 {
		e.search.cursor = 0
		e.sel = SingleCell{Cell: e.search.matches[0]}
	}
	return len(e.search.matches), nil
}

// matchValue applies the active match predicate to one cell value.
func (e *Editor) matchValue(v string) bool {
	switch {
	case e.search.opts.Regex:
		return e.search.re.MatchString(v)
	case e.search.opts.WholeWord:
		// Token-level equality, not a regex word boundary: a query
		// containing spaces can never match.
		q := e.fold(e.search.query)
		for _, tok := range strings.Fields(v) {
			if e.fold(tok) == q {
				return true
			}
		}
		return false
	default:
		return strings.Contains(e.fold(v), e.fold(e.search.query))
	}
}

func (e *Editor) fold(s string) string {
	if e.search.opts.CaseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// Matches returns the current scan result. The slice must be treated as
// read-only.
func (e *Editor) Matches() []CellRef { return e.search.matches }

// MatchCursor returns the index of the current match, or -1 when there is
// none.
func (e *Editor) MatchCursor() int { return e.search.cursor }

// SearchActive reports whether a query is currently active.
func (e *Editor) SearchActive() bool { return e.search.active }

// SearchQuery returns the stored query and options.
func (e *Editor) SearchQuery() (string, SearchOptions) {
	return e.search.query, e.search.opts
}

// CurrentMatch returns the match under the cursor, or nil.
func (e *Editor) CurrentMatch() *CellRef {
	if e.search.cursor < 0 || e.search.cursor >= len(e.search.matches) {
		return nil
	}
	m := e.search.matches[e.search.cursor]
	return &m
}

// NextMatch advances to the next match, wrapping past the end, and selects
// it. Returns nil when there are no matches.
func (e *Editor) NextMatch() *CellRef {
	if len(e.search.matches) == 0 {
		return nil
	}
	e.search.cursor = (e.search.cursor + 1) % len(e.search.matches)
	m := e.search.matches[e.search.cursor]
	e.sel = SingleCell{Cell: m}
	return &m
}

// PreviousMatch steps back to the previous match, wrapping past the start,
// and selects it. Returns nil when there are no matches.
func (e *Editor) PreviousMatch() *CellRef {
	if len(e.search.matches) == 0 {
		return nil
	}
	e.search.cursor = (e.search.cursor - 1 + len(e.search.matches)) % len(e.search.matches)
	m := e.search.matches[e.search.cursor]
	e.sel = SingleCell{Cell: m}
	return &m
}

// ClearSearch resets the query, matches, and cursor.
func (e *Editor) ClearSearch() {
	e.search = searchState{cursor: -1}
}

// refreshSearch re-runs the scan after undo/redo when a query is active.
// Other mutation paths intentionally leave matches stale until the next
// explicit search.
func (e *Editor) refreshSearch() {
	if !e.search.active || e.search.query == "" {
		return
	}
	_, _ = e.PerformSearch()
}

// ReplaceCurrent replaces the matched span in the current match's cell and
// advances to the next match. Only the matched span changes: for plain mode
// the first occurrence in the cell, for whole-word mode the exact matching
// token, for regex mode the first pattern occurrence (with group expansion).
// Returns false when there is no current match or the cell no longer matches.
func (e *Editor) ReplaceCurrent(replacement string) (bool, error) {
	m := e.CurrentMatch()
	if m == nil {
		return false, nil
	}

	live, ok := e.grid.Cell(m.Row, m.Col)
	if !ok {
		e.NextMatch()
		return false, nil
	}
	newVal, changed, err := e.replaceInValue(live, replacement)
	if err != nil {
		return false, err
	}
	if !changed {
		e.NextMatch()
		return false, nil
	}

	before := e.grid
	rows := cloneRows(before.Rows)
	rows[m.Row][m.Col] = newVal
	e.grid = Grid{Headers: cloneStrings(before.Headers), Rows: rows}
	e.record(ActionBulkReplace, before, "Replace text")

	e.NextMatch()
	return true, nil
}

// ReplaceAllMatches applies the per-match replacement to every matched cell
// in a single history entry, then clears the search state entirely. Returns
// the number of cells changed.
func (e *Editor) ReplaceAllMatches(replacement string) (int, error) {
	if len(e.search.matches) == 0 {
		return 0, nil
	}

	before := e.grid
	rows := cloneRows(before.Rows)
	changedCells := 0
	for _, m := range e.search.matches {
		if m.Row >= len(rows) || m.Col >= len(rows[m.Row]) {
			continue
		}
		newVal, changed, err := e.replaceInValue(rows[m.Row][m.Col], replacement)
		if err != nil {
			return 0, err
		}
		if changed {
			rows[m.Row][m.Col] = newVal
			changedCells++
		}
	}
	if changedCells == 0 {
		e.ClearSearch()
		return 0, nil
	}

	count := len(e.search.matches)
	e.grid = Grid{Headers: cloneStrings(before.Headers), Rows: rows}
	e.record(ActionBulkReplace, before, fmt.Sprintf("Replace all (%d matches)", count))
	e.ClearSearch()
	return changedCells, nil
}

// replaceInValue computes the replacement of the matched span inside one cell
// value using the active search mode.
func (e *Editor) replaceInValue(v, replacement string) (string, bool, error) {
	switch {
	case e.search.opts.Regex:
		re := e.search.re
		if re == nil {
			pattern := e.search.query
			if !e.search.opts.CaseSensitive {
				pattern = "(?i)" + pattern
			}
			var err error
			re, err = regexp.Compile(pattern)
			if err != nil {
				return v, false, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
			}
			e.search.re = re
		}
		loc := re.FindStringIndex(v)
		if loc == nil {
			return v, false, nil
		}
		return v[:loc[0]] + re.ReplaceAllString(v[loc[0]:loc[1]], replacement) + v[loc[1]:], true, nil

	case e.search.opts.WholeWord:
		start, end, ok := e.wordSpan(v)
		if !ok {
			return v, false, nil
		}
		return v[:start] + replacement + v[end:], true, nil

	default:
		start, end, ok := e.substringSpan(v)
		if !ok {
			return v, false, nil
		}
		return v[:start] + replacement + v[end:], true, nil
	}
}

// substringSpan locates the first occurrence of the query in v, honoring
// case sensitivity, and returns its byte span.
func (e *Editor) substringSpan(v string) (int, int, bool) {
	if e.search.opts.CaseSensitive {
		i := strings.Index(v, e.search.query)
		if i < 0 {
			return 0, 0, false
		}
		return i, i + len(e.search.query), true
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(e.search.query))
	if err != nil {
		return 0, 0, false
	}
	loc := re.FindStringIndex(v)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

// wordSpan locates the first whitespace-delimited token equal to the query
// and returns its byte span.
func (e *Editor) wordSpan(v string) (int, int, bool) {
	q := e.fold(e.search.query)
	start := -1
	for i, r := range v {
		if unicode.IsSpace(r) {
			if start >= 0 && e.fold(v[start:i]) == q {
				return start, i, true
			}
			start = -1
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 && e.fold(v[start:]) == q {
		return start, len(v), true
	}
	return 0, 0, false
}
