package core

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates SQL WHERE conditions with positional arguments.
// Empty values are skipped, so callers can feed optional filters straight in.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder creates an empty builder. Argument numbering starts at $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends an equality condition. An empty value is skipped.
func (wb *WhereBuilder) Add(column, value string) {
	if value == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", column, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddTimestampRange appends an inclusive range condition on column.
func (wb *WhereBuilder) AddTimestampRange(column string, start, end any) {
	wb.conditions = append(wb.conditions,
		fmt.Sprintf("%s >= $%d AND %s <= $%d", column, wb.argIndex, column, wb.argIndex+1))
	wb.args = append(wb.args, start, end)
	wb.argIndex += 2
}

// Build renders the accumulated conditions. With no conditions it returns an
// empty clause and nil args; otherwise the clause starts with " WHERE ".
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex returns the positional index the next argument would take.
// Useful for appending LIMIT/OFFSET placeholders after Build.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}
