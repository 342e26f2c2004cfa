package web

import (
	"net/http"

	"github.com/celled/celled/internal/core"
)

// handleSearch sets the session's search query and returns the first match.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req core.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	sum, err := s.service.Search(sessionID(r), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"search": sum})
}

// handleNextMatch advances the match cursor, wrapping at the end.
func (s *Server) handleNextMatch(w http.ResponseWriter, r *http.Request) {
	ref, err := s.service.NextMatch(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"current": ref})
}

// handlePreviousMatch steps the match cursor backwards, wrapping at the start.
func (s *Server) handlePreviousMatch(w http.ResponseWriter, r *http.Request) {
	ref, err := s.service.PreviousMatch(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"current": ref})
}

// handleReplaceCurrent replaces the matched span of the current match and
// advances to the next one.
func (s *Server) handleReplaceCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	replaced, sum, err := s.service.ReplaceCurrent(ctx, sessionID(r), req.Text)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"replaced": replaced, "search": sum})
}

// handleReplaceAll replaces every match in one undoable step and clears the
// search.
func (s *Server) handleReplaceAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	count, err := s.service.ReplaceAll(ctx, sessionID(r), req.Text)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"replaced": count})
}

// handleClearSearch drops the active search.
func (s *Server) handleClearSearch(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearSearch(sessionID(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "cleared"})
}
