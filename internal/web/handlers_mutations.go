package web

import (
	"net/http"

	"github.com/celled/celled/internal/core"
)

// stateAfter writes the refreshed session snapshot, so clients pick up the
// new revision, dirty flag, and undo availability in one round trip.
func (s *Server) stateAfter(w http.ResponseWriter, r *http.Request, id string) {
	state, err := s.service.GetState(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, state)
}

// handleUpdateCell writes a single cell value.
func (s *Server) handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Row   int    `json:"row"`
		Col   int    `json:"col"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.UpdateCell(ctx, id, req.Row, req.Col, req.Value); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.stateAfter(w, r, id)
}

// handleSetSelection replaces the active selection.
func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req core.SelectionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	info, err := s.service.SetSelection(sessionID(r), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"selection": info})
}

// handleExtendSelection stretches the selection to include a cell.
func (s *Server) handleExtendSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Row int `json:"row"`
		Col int `json:"col"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	info, err := s.service.ExtendSelection(sessionID(r), req.Row, req.Col)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"selection": info})
}

// handleCopy copies the selection to the session clipboard. With system=true
// the text is mirrored to the OS clipboard as well.
func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Copy(sessionID(r), parseBoolParam(r, "system"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handleCut copies the selection and blanks it.
func (s *Server) handleCut(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Cut(ctx, sessionID(r), parseBoolParam(r, "system"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handlePaste pastes the clipboard at the given anchor, or at the selection
// top-left when row and col are omitted.
func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Row    int  `json:"row"`
		Col    int  `json:"col"`
		System bool `json:"system"`
	}{Row: -1, Col: -1}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.Paste(ctx, sessionID(r), req.Row, req.Col, req.System)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handleClearCells blanks the selected cells.
func (s *Server) handleClearCells(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)
	cleared, err := s.service.ClearCells(ctx, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !cleared {
		writeJSON(w, map[string]any{"applied": false})
		return
	}
	s.stateAfter(w, r, id)
}

// handleInsertRow inserts an empty row above or below the given index.
func (s *Server) handleInsertRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position string `json:"position"`
		Index    int    `json:"index"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.InsertRow(ctx, id, req.Position, req.Index); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.stateAfter(w, r, id)
}

// handleDeleteRow removes one row.
func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.DeleteRow(ctx, id, index); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.stateAfter(w, r, id)
}

// handleDuplicateRow copies a row in place directly below the original.
func (s *Server) handleDuplicateRow(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.DuplicateRow(ctx, id, index); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.stateAfter(w, r, id)
}

// handleMoveRow relocates a row, guarded by the revision stamp.
func (s *Server) handleMoveRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	outcome, err := s.service.MoveRow(ctx, sessionID(r), req.From, req.To)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, outcome)
}

// handleInsertColumn inserts a column and returns its generated name.
func (s *Server) handleInsertColumn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position string `json:"position"`
		Index    int    `json:"index"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	name, err := s.service.InsertColumn(ctx, sessionID(r), req.Position, req.Index)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"name": name})
}

// handleDeleteColumn removes one column.
func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.DeleteColumn(ctx, id, index); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.stateAfter(w, r, id)
}

// handleRenameColumn sets a column header.
func (s *Server) handleRenameColumn(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.RenameColumn(ctx, id, index, req.Name); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.stateAfter(w, r, id)
}

// handleMoveColumn relocates a column, guarded by the revision stamp.
func (s *Server) handleMoveColumn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	outcome, err := s.service.MoveColumn(ctx, sessionID(r), req.From, req.To)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, outcome)
}

// handleUndo steps history back one entry.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)
	applied, err := s.service.Undo(ctx, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !applied {
		writeJSON(w, map[string]any{"applied": false})
		return
	}
	s.stateAfter(w, r, id)
}

// handleRedo reapplies the next history entry.
func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	ctx := WithRequestMetadata(r.Context(), r)
	applied, err := s.service.Redo(ctx, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !applied {
		writeJSON(w, map[string]any{"applied": false})
		return
	}
	s.stateAfter(w, r, id)
}

// handleHistory lists the undo stack with the cursor position.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.History(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, view)
}
