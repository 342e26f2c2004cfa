package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers call respondError with the technical error; the error is mapped
// via core.MapError to a user-friendly message, logged with the request ID
// for correlation, and returned as JSON with a status derived from the
// error code.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/celled/celled/internal/core"
)

// ErrorResponse is the JSON structure for API error responses. It carries
// both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and writes the mapped
// user message as JSON.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	statusCode := statusFor(userMsg.Code)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor picks the HTTP status for a mapped error code. Codes that do not
// speak to a specific status fall back to 400; only genuinely internal
// failures surface as 500.
func statusFor(code string) int {
	switch code {
	case "SES001", "FILE002", "SCR004", "EXP001":
		return http.StatusNotFound
	case "SES002", "SCR002", "RATE001":
		return http.StatusTooManyRequests
	case "SES003", "SORT002":
		return http.StatusConflict
	case "FILE001":
		return http.StatusRequestEntityTooLarge
	case "REQ001", "REQ002", "SCR003":
		return http.StatusGatewayTimeout
	case "DB001", "DB002", "DB003", "AUD001":
		return http.StatusServiceUnavailable
	case "ERR000", "FILE005":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
