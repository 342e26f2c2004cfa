package web

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/celled/celled/internal/export"
	"github.com/celled/celled/internal/gridsort"
)

// handleSort sorts the grid by up to two columns. Specs come from the JSON
// body, or from ?sort=&dir= query parameters for link-driven clients.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Specs []gridsort.Spec `json:"specs"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
	}
	if len(req.Specs) == 0 {
		req.Specs = parseSortSpecs(r)
	}

	ctx := WithRequestMetadata(r.Context(), r)
	outcome, err := s.service.Sort(ctx, sessionID(r), req.Specs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, outcome)
}

// handleExport renders the grid in the requested format. With a path in the
// body the result is written to disk; otherwise it streams back as a
// download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		export.Options
		Path string `json:"path"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)

	if req.Path != "" {
		if err := s.service.ExportToFile(ctx, id, req.Options, req.Path); err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, map[string]string{"path": req.Path})
		return
	}

	data, info, err := s.service.ExportBytes(id, req.Options)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", info.MIME)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, s.exportFilename(id, info)))
	w.Write(data)
}

// exportFilename derives a download name from the session's file, falling
// back to "export" for blank sessions.
func (s *Server) exportFilename(id string, info export.FormatInfo) string {
	stem := "export"
	if state, err := s.service.GetState(id); err == nil && state.File.Filename != "" {
		stem = strings.TrimSuffix(state.File.Filename, filepath.Ext(state.File.Filename))
	}
	return stem + info.Extension
}

// handleExportPreview returns the first rows of a text export.
func (s *Server) handleExportPreview(w http.ResponseWriter, r *http.Request) {
	opts := export.Options{
		Format:         r.URL.Query().Get("format"),
		IncludeHeaders: true,
	}
	if r.URL.Query().Has("headers") {
		opts.IncludeHeaders = parseBoolParam(r, "headers")
	}
	opts.PrettyPrint = parseBoolParam(r, "pretty")
	maxRows := parseIntParam(r, "rows", 0)

	preview, err := s.service.ExportPreview(sessionID(r), opts, maxRows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"preview": preview})
}
