package analysis

// validate.go implements rule-based cell validation. Rules target one column
// each and report every offending cell; nothing is mutated. Rule sets can be
// declared inline or loaded from a YAML document, which is how saved
// validation profiles are shipped around.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/celled/celled/internal/engine"
)

// RuleType names one validation rule kind.
type RuleType string

const (
	RuleRange    RuleType = "range"
	RuleLength   RuleType = "length"
	RulePattern  RuleType = "pattern"
	RuleRequired RuleType = "required"
	RuleUnique   RuleType = "unique"
)

// Rule checks one column against one constraint. Params carries the
// rule-specific knobs: "min"/"max" for range, "min_length"/"max_length" for
// length, "pattern" for pattern. Message overrides the built-in error text
// when set.
type Rule struct {
	Type       RuleType          `json:"type" yaml:"type"`
	Column     int               `json:"column" yaml:"column"`
	ColumnName string            `json:"columnName,omitempty" yaml:"column_name,omitempty"`
	Params     map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Message    string            `json:"message,omitempty" yaml:"message,omitempty"`
}

// CellError reports one cell that failed a rule.
type CellError struct {
	Row        int      `json:"row"`
	Col        int      `json:"col"`
	ColumnName string   `json:"columnName"`
	Value      string   `json:"value"`
	Rule       RuleType `json:"rule"`
	Message    string   `json:"message"`
}

func (e CellError) Error() string {
	return fmt.Sprintf("row %d, column %q: %s", e.Row, e.ColumnName, e.Message)
}

// Validate runs every rule over the grid and returns all offending cells in
// rule order, then row order. Rules naming an out-of-bounds column match
// nothing. A rule whose pattern does not compile yields a single error at
// (-1, column) so misconfigured profiles surface instead of silently passing.
func Validate(grid engine.Grid, rules []Rule) []CellError {
	var errs []CellError
	for _, rule := range rules {
		if rule.Column < 0 || rule.Column >= grid.ColumnCount() {
			continue
		}
		name := rule.ColumnName
		if name == "" {
			name = grid.Headers[rule.Column]
		}

		switch rule.Type {
		case RuleRange:
			errs = append(errs, validateRange(grid, rule, name)...)
		case RuleLength:
			errs = append(errs, validateLength(grid, rule, name)...)
		case RulePattern:
			errs = append(errs, validatePattern(grid, rule, name)...)
		case RuleRequired:
			errs = append(errs, validateRequired(grid, rule, name)...)
		case RuleUnique:
			errs = append(errs, validateUnique(grid, rule, name)...)
		}
	}
	return errs
}

// RulesFromYAML parses a rule set from a YAML document shaped as
//
//	rules:
//	  - type: range
//	    column: 2
//	    params: {min: "0", max: "100"}
func RulesFromYAML(data []byte) ([]Rule, error) {
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse validation rules: %w", err)
	}
	for i, r := range doc.Rules {
		switch r.Type {
		case RuleRange, RuleLength, RulePattern, RuleRequired, RuleUnique:
		default:
			return nil, fmt.Errorf("rule %d: unknown rule type %q", i, r.Type)
		}
	}
	return doc.Rules, nil
}

func validateRange(grid engine.Grid, rule Rule, name string) []CellError {
	min, hasMin := paramFloat(rule.Params, "min")
	max, hasMax := paramFloat(rule.Params, "max")

	var errs []CellError
	for r, row := range grid.Rows {
		v := cellValue(row, rule.Column)
		// Non-numeric values are the pattern rule's concern, not range's.
		num, ok := ParseNumber(v)
		if !ok {
			continue
		}
		if (hasMin && num < min) || (hasMax && num > max) {
			errs = append(errs, CellError{
				Row: r, Col: rule.Column, ColumnName: name, Value: v, Rule: RuleRange,
				Message: ruleMessage(rule, fmt.Sprintf("value %s is out of range", v)),
			})
		}
	}
	return errs
}

func validateLength(grid engine.Grid, rule Rule, name string) []CellError {
	minLen, hasMin := paramInt(rule.Params, "min_length")
	maxLen, hasMax := paramInt(rule.Params, "max_length")

	var errs []CellError
	for r, row := range grid.Rows {
		v := cellValue(row, rule.Column)
		n := len(v)
		if (hasMin && n < minLen) || (hasMax && n > maxLen) {
			errs = append(errs, CellError{
				Row: r, Col: rule.Column, ColumnName: name, Value: v, Rule: RuleLength,
				Message: ruleMessage(rule, fmt.Sprintf("length %d is invalid", n)),
			})
		}
	}
	return errs
}

func validatePattern(grid engine.Grid, rule Rule, name string) []CellError {
	pattern := rule.Params["pattern"]
	re, err := regexp.Compile(pattern)
	if err != nil {
		return []CellError{{
			Row: -1, Col: rule.Column, ColumnName: name, Rule: RulePattern,
			Message: fmt.Sprintf("invalid pattern %q: %v", pattern, err),
		}}
	}

	var errs []CellError
	for r, row := range grid.Rows {
		v := cellValue(row, rule.Column)
		if v == "" || re.MatchString(v) {
			continue
		}
		errs = append(errs, CellError{
			Row: r, Col: rule.Column, ColumnName: name, Value: v, Rule: RulePattern,
			Message: ruleMessage(rule, fmt.Sprintf("value %q does not match pattern", v)),
		})
	}
	return errs
}

func validateRequired(grid engine.Grid, rule Rule, name string) []CellError {
	var errs []CellError
	for r, row := range grid.Rows {
		v := cellValue(row, rule.Column)
		if strings.TrimSpace(v) != "" {
			continue
		}
		errs = append(errs, CellError{
			Row: r, Col: rule.Column, ColumnName: name, Value: v, Rule: RuleRequired,
			Message: ruleMessage(rule, "required field is empty"),
		})
	}
	return errs
}

func validateUnique(grid engine.Grid, rule Rule, name string) []CellError {
	seen := make(map[string]int)
	var errs []CellError
	for r, row := range grid.Rows {
		v := cellValue(row, rule.Column)
		if v == "" {
			continue
		}
		if first, dup := seen[v]; dup {
			errs = append(errs, CellError{
				Row: r, Col: rule.Column, ColumnName: name, Value: v, Rule: RuleUnique,
				Message: ruleMessage(rule, fmt.Sprintf("duplicate value %q (first seen at row %d)", v, first+1)),
			})
			continue
		}
		seen[v] = r
	}
	return errs
}

func ruleMessage(rule Rule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

func cellValue(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

func paramFloat(params map[string]string, key string) (float64, bool) {
	s, ok := params[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func paramInt(params map[string]string, key string) (int, bool) {
	s, ok := params[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
