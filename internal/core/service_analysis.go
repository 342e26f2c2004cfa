package core

import (
	"context"
	"fmt"

	"github.com/celled/celled/internal/analysis"
)

// AnalyzeTypes detects each column's data type by majority vote over its
// non-empty cells.
func (s *Service) AnalyzeTypes(sessionID string) ([]ColumnType, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	g := sess.editor.Grid()
	types := make([]ColumnType, g.ColumnCount())
	for col := range g.Headers {
		values := make([]string, 0, g.RowCount())
		for _, row := range g.Rows {
			if col < len(row) {
				values = append(values, row[col])
			}
		}
		types[col] = ColumnType{
			Index: col,
			Name:  g.Headers[col],
			Type:  string(analysis.DetectColumnType(values)),
		}
	}
	return types, nil
}

// AnalyzeQuality builds the full data quality report: completeness, type
// consistency, duplicate row groups and numeric outliers.
func (s *Service) AnalyzeQuality(ctx context.Context, sessionID string) (*analysis.Report, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	return analysis.Analyze(ctx, sess.editor.Grid())
}

// Cleanse runs one cleansing action. When anything changed, the result grid
// replaces the session grid as a single undoable entry.
func (s *Service) Cleanse(ctx context.Context, sessionID string, params analysis.Params) (*analysis.Result, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	cleansed, result, err := analysis.Apply(sess.editor.Grid(), params)
	if err != nil {
		return nil, err
	}

	if result.CellsModified > 0 || result.RowsAffected > 0 {
		desc := fmt.Sprintf("Cleanse: %s", params.Action)
		sess.editor.ReplaceGrid(cleansed, desc)

		s.audit(ctx, auditParams{
			Action:       ActionCleanse,
			Path:         sess.Path,
			SessionID:    sess.ID,
			RowsAffected: result.RowsAffected,
			Description:  fmt.Sprintf("%s (%d cells)", desc, result.CellsModified),
		})
	}
	return &result, nil
}

// ValidateRules runs validation rules over the grid. When yamlRules is
// non-empty it is parsed first and wins over rules.
func (s *Service) ValidateRules(sessionID string, rules []analysis.Rule, yamlRules []byte) ([]analysis.CellError, error) {
	if len(yamlRules) > 0 {
		parsed, err := analysis.RulesFromYAML(yamlRules)
		if err != nil {
			return nil, err
		}
		rules = parsed
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	return analysis.Validate(sess.editor.Grid(), rules), nil
}
