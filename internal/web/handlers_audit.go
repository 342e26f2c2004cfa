package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/celled/celled/internal/core"
)

// auditFilterFromQuery builds an AuditFilter from the request query string.
// Date bounds accept YYYY-MM-DD; the end date is inclusive.
func auditFilterFromQuery(r *http.Request) core.AuditFilter {
	filter := core.AuditFilter{
		Path:      r.URL.Query().Get("path"),
		SessionID: r.URL.Query().Get("session"),
		Action:    core.AuditAction(r.URL.Query().Get("action")),
		Severity:  r.URL.Query().Get("severity"),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.StartTime = t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.EndTime = t.Add(24*time.Hour - time.Second)
		}
	}
	return filter
}

// handleAuditList returns one page of audit entries, newest first.
func (s *Server) handleAuditList(w http.ResponseWriter, r *http.Request) {
	page := parseIntParam(r, "page", 1)
	pageSize := parseIntParam(r, "pageSize", core.DefaultAuditLimit)

	filter := auditFilterFromQuery(r)
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	var (
		result *core.AuditPage
		err    error
	)
	if parseBoolParam(r, "archived") {
		result, err = s.service.AuditArchiveList(r.Context(), filter)
	} else {
		result, err = s.service.AuditList(r.Context(), filter)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handleAuditEntry returns a single audit entry by ID.
func (s *Server) handleAuditEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := s.service.AuditByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, entry)
}

// handleAuditExport downloads matching audit entries as CSV.
func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.AuditExportCSV(r.Context(), auditFilterFromQuery(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="audit_log_%s.csv"`, timestamp))
	w.Write(data)
}
