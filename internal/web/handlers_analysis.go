package web

import (
	"net/http"

	"github.com/celled/celled/internal/analysis"
)

// handleAnalyzeTypes reports the detected data type of every column.
func (s *Server) handleAnalyzeTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.service.AnalyzeTypes(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"columns": types})
}

// handleAnalyzeQuality builds the data quality report.
func (s *Server) handleAnalyzeQuality(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.AnalyzeQuality(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// handleCleanse runs one cleansing action over the grid.
func (s *Server) handleCleanse(w http.ResponseWriter, r *http.Request) {
	var req analysis.Params
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Cleanse(ctx, sessionID(r), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handleValidateRules checks the grid against validation rules. Rules come
// inline, as YAML, or both; YAML definitions win on conflict.
func (s *Server) handleValidateRules(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rules []analysis.Rule `json:"rules"`
		YAML  string          `json:"yaml"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	var yamlRules []byte
	if req.YAML != "" {
		yamlRules = []byte(req.YAML)
	}

	violations, err := s.service.ValidateRules(sessionID(r), req.Rules, yamlRules)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"violations": violations,
		"count":      len(violations),
	})
}
