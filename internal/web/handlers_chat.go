package web

import (
	"fmt"
	"net/http"

	"github.com/celled/celled/internal/chat"
	"github.com/celled/celled/internal/script"
	"github.com/celled/celled/internal/settings"
)

// handleChatHistory returns the transcript tied to the session's file.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := s.service.ChatHistory(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, hist)
}

// handleAppendChat appends one message to the transcript. Assistant messages
// may carry a generated script inline.
func (s *Server) handleAppendChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role    string         `json:"role"`
		Content string         `json:"content"`
		Script  *script.Script `json:"script"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	role := chat.Role(req.Role)
	if !role.Valid() {
		badRequest(w, fmt.Sprintf("unknown chat role %q", req.Role))
		return
	}

	msg := chat.NewMessage(role, req.Content)
	msg.Script = req.Script

	hist, err := s.service.AppendChat(sessionID(r), msg)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, hist)
}

// handleClearChat deletes the session's transcript.
func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearChat(sessionID(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "cleared"})
}

// handleGetSettings returns the current import/export preferences.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.GetSettings())
}

// handleUpdateSettings validates and persists new preferences.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var prefs settings.ImportExport
	if err := decodeJSON(r, &prefs); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.service.UpdateSettings(prefs); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, prefs)
}

// handleResetSettings restores the default preferences.
func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.service.ResetSettings()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, prefs)
}
