package web

import (
	"net/http"
	"time"
)

// handleHealth reports liveness plus a snapshot of session and script load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"sessions": len(s.service.ListSessions()),
		"scripts":  s.service.Executor().Limiter().Status(),
	})
}

// handleFormats lists the registered export formats.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"formats": s.service.Formats()})
}

// handleValidatePath checks whether a path points at an openable CSV/TSV file.
func (s *Server) handleValidatePath(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		badRequest(w, "missing path parameter")
		return
	}

	if err := s.service.ValidateCSVPath(path); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"valid": true, "path": path})
}

// handleOpenFile opens a CSV/TSV file and returns the new session state.
func (s *Server) handleOpenFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Path == "" {
		badRequest(w, "missing path")
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	state, err := s.service.OpenFile(ctx, req.Path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, state)
}

// handleNewBlank creates an unsaved session, optionally seeded with data.
func (s *Server) handleNewBlank(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	ctx := WithRequestMetadata(r.Context(), r)
	state, err := s.service.NewBlank(ctx, req.Headers, req.Rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, state)
}

// handleListSessions lists all open sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"sessions": s.service.ListSessions()})
}

// handleGetState returns the full snapshot for one session.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.GetState(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, state)
}

// handleCloseSession closes a session. Dirty sessions are refused unless
// force=true is set.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	force := parseBoolParam(r, "force")

	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.CloseSession(ctx, sessionID(r), force); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "closed"})
}

// handleGetChunk returns a bounds-clamped slice of rows.
func (s *Server) handleGetChunk(w http.ResponseWriter, r *http.Request) {
	start := parseIntParam(r, "start", 0)
	end := parseIntParam(r, "end", 0)

	chunk, err := s.service.GetChunk(sessionID(r), start, end)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, chunk)
}

// handleSaveFile writes the grid back to disk. An empty path saves in place;
// a new path performs save-as and rebinds the session.
func (s *Server) handleSaveFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.SaveFile(ctx, sessionID(r), req.Path)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handleGetMetadata returns the sidecar metadata for a session's file.
func (s *Server) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	md, err := s.service.GetMetadata(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, md)
}
