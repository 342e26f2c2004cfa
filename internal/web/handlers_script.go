package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/celled/celled/internal/script"
)

// handleExecuteScript starts an asynchronous script run against a snapshot
// of the session grid.
func (s *Server) handleExecuteScript(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
		Type    string `json:"type"`
		Prompt  string `json:"prompt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	execID, err := s.service.ExecuteScript(ctx, sessionID(r), req.Content, script.Type(req.Type), req.Prompt)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"executionId": execID})
}

// scriptStatusResponse pairs the progress snapshot with the final result
// once the run has finished.
type scriptStatusResponse struct {
	Progress script.Progress `json:"progress"`
	Result   *script.Result  `json:"result,omitempty"`
}

// handleScriptStatus returns the current state of an execution. Finished
// runs include the result.
func (s *Server) handleScriptStatus(w http.ResponseWriter, r *http.Request) {
	execID := chi.URLParam(r, "executionID")

	progress, err := s.service.ScriptProgress(execID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := scriptStatusResponse{Progress: progress}
	switch progress.Status {
	case script.StatusCompleted, script.StatusFailed, script.StatusCancelled:
		// Done is already closed for terminal executions, so this returns
		// without blocking.
		if result, err := s.service.ScriptResult(r.Context(), execID); err == nil {
			resp.Result = result
		}
	}
	writeJSON(w, resp)
}

// handleScriptEvents streams execution progress via Server-Sent Events.
// Supports resumption via the lastEventId query parameter: the event ID is
// the progress percentage, so reconnecting clients skip events they have
// already seen.
func (s *Server) handleScriptEvents(w http.ResponseWriter, r *http.Request) {
	execID := chi.URLParam(r, "executionID")

	lastEventIDStr := r.URL.Query().Get("lastEventId")
	var lastEventID int
	if lastEventIDStr != "" {
		lastEventID, _ = strconv.Atoi(lastEventIDStr)
	}

	progressCh, err := s.service.SubscribeScript(execID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				// Channel closed, the execution reached a terminal state.
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			currentPercent := int(progress.Percentage)
			if lastEventIDStr != "" && currentPercent <= lastEventID {
				continue
			}

			data, _ := json.Marshal(progress)
			fmt.Fprintf(w, "id: %d\nevent: progress\ndata: %s\n\n", currentPercent, data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleApplyScript applies a completed transformation to the session grid.
func (s *Server) handleApplyScript(w http.ResponseWriter, r *http.Request) {
	execID := chi.URLParam(r, "executionID")

	ctx := WithRequestMetadata(r.Context(), r)
	state, err := s.service.ApplyScript(ctx, sessionID(r), execID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, state)
}

// handleRemoveScript cancels a run if needed and discards its state.
func (s *Server) handleRemoveScript(w http.ResponseWriter, r *http.Request) {
	execID := chi.URLParam(r, "executionID")
	s.service.RemoveScript(execID)
	writeJSON(w, map[string]string{"status": "removed"})
}
