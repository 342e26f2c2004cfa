package analysis

// types.go provides per-value and per-column type detection plus the value
// parsers shared with sorting and cleansing.
//
// The parsers handle the messy reality of user-edited tabular data:
//   - Multiple date formats (US, EU, ISO, compact)
//   - Currency symbols and thousand separators in numbers
//   - Various boolean spellings (yes/no, true/false, 1/0)
//   - Excel formula prefixes (="value")
//
// All Parse* functions report ok=false for empty or unparseable input.

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DataType classifies a cell value or a column.
type DataType string

const (
	TypeBoolean  DataType = "boolean"
	TypeInteger  DataType = "integer"
	TypeFloat    DataType = "float"
	TypeDate     DataType = "date"
	TypeDatetime DataType = "datetime"
	TypeEmail    DataType = "email"
	TypeURL      DataType = "url"
	TypeJSON     DataType = "json"
	TypeText     DataType = "text"
)

// detectionOrder fixes which type wins for ambiguous values and breaks ties
// in the column majority vote.
var detectionOrder = []DataType{
	TypeBoolean, TypeInteger, TypeFloat, TypeDate, TypeDatetime,
	TypeEmail, TypeURL, TypeJSON, TypeText,
}

// numericRegex validates a numeric string after cleanup. Matches integers,
// decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	urlRegex   = regexp.MustCompile(`^https?://[^\s]+\.[^\s]+$`)
)

// TwoDigitYearPivot defines how 2-digit years are interpreted. Years that
// would land more than this many years in the future are assumed to be in
// the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for 2-digit year handling.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	datetimeLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006-01-02 15:04",
		"1/2/2006 15:04",
		"01/02/2006 15:04:05",
	}
)

// DetectValueType classifies a single cell value. Empty values classify as
// text; callers doing column votes skip them first.
func DetectValueType(s string) DataType {
	v := strings.TrimSpace(s)
	if v == "" {
		return TypeText
	}
	if _, ok := ParseBool(v); ok {
		return TypeBoolean
	}
	if _, ok := ParseInt(v); ok {
		return TypeInteger
	}
	if _, ok := ParseNumber(v); ok {
		return TypeFloat
	}
	if _, ok := ParseDate(v); ok {
		return TypeDate
	}
	if _, ok := ParseDateTime(v); ok {
		return TypeDatetime
	}
	if emailRegex.MatchString(v) {
		return TypeEmail
	}
	if urlRegex.MatchString(v) {
		return TypeURL
	}
	if isJSONValue(v) {
		return TypeJSON
	}
	return TypeText
}

// DetectColumnType votes over the non-empty values of a column. The majority
// type wins; ties break toward the earlier detection order; a column with no
// non-empty values is text.
func DetectColumnType(values []string) DataType {
	counts := make(map[DataType]int)
	nonEmpty := 0
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		nonEmpty++
		counts[DetectValueType(v)]++
	}
	if nonEmpty == 0 {
		return TypeText
	}

	best := TypeText
	bestCount := -1
	for _, t := range detectionOrder {
		if counts[t] > bestCount {
			best = t
			bestCount = counts[t]
		}
	}
	return best
}

// ParseBool parses the common boolean spellings: true/false, t/f, yes/no,
// y/n, 1/0.
func ParseBool(s string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

// ParseInt parses an integer, tolerating currency symbols and thousand
// separators.
func ParseInt(s string) (int64, bool) {
	cleaned, ok := cleanNumeric(s)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseNumber parses a float, tolerating currency symbols, thousand
// separators, and the accounting negative form "(123.45)".
func ParseNumber(s string) (float64, bool) {
	cleaned, ok := cleanNumeric(s)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// cleanNumeric strips currency symbols and separators and applies the
// accounting negative, then validates the numeric shape.
func cleanNumeric(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, "¥", "") // Yen
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}
	if !numericRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// ParseDate parses a date-only value. Four-digit year layouts are tried
// first; 2-digit years apply the pivot.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateTime parses a date-plus-time value.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTemporal parses either a date or a datetime.
func ParseTemporal(s string) (time.Time, bool) {
	if t, ok := ParseDate(s); ok {
		return t, ok
	}
	return ParseDateTime(s)
}

// CleanValue removes common spreadsheet artifacts from a cell value: outer
// whitespace, the Excel formula prefix (="..."), and surrounding quotes.
func CleanValue(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

func isJSONValue(s string) bool {
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return false
	}
	return json.Valid([]byte(s))
}
