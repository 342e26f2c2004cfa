// Package web provides the HTTP server and handlers for the grid editor API.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/celled/celled/internal/config"
	"github.com/celled/celled/internal/core"
	mw "github.com/celled/celled/internal/web/middleware"
)

// Server is the HTTP server for the grid editor application.
type Server struct {
	cfg     *config.Config
	service *core.Service
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, service *core.Service) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))

	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}

	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Get("/health", s.handleHealth)
		r.Get("/formats", s.handleFormats)
		r.Get("/files/validate", s.handleValidatePath)

		// Import/export preferences
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
		r.Delete("/settings", s.handleResetSettings)

		// Session lifecycle
		r.Post("/sessions", s.handleOpenFile)
		r.Post("/sessions/blank", s.handleNewBlank)
		r.Get("/sessions", s.handleListSessions)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetState)
			r.Delete("/", s.handleCloseSession)
			r.Get("/rows", s.handleGetChunk)
			r.Post("/save", s.handleSaveFile)
			r.Get("/metadata", s.handleGetMetadata)

			// Cell and structure edits
			r.Put("/cell", s.handleUpdateCell)
			r.Put("/selection", s.handleSetSelection)
			r.Post("/selection/extend", s.handleExtendSelection)
			r.Post("/copy", s.handleCopy)
			r.Post("/cut", s.handleCut)
			r.Post("/paste", s.handlePaste)
			r.Post("/clear", s.handleClearCells)
			r.Post("/rows/insert", s.handleInsertRow)
			r.Post("/rows/move", s.handleMoveRow)
			r.Delete("/rows/{index}", s.handleDeleteRow)
			r.Post("/rows/{index}/duplicate", s.handleDuplicateRow)
			r.Post("/columns/insert", s.handleInsertColumn)
			r.Post("/columns/move", s.handleMoveColumn)
			r.Put("/columns/{index}", s.handleRenameColumn)
			r.Delete("/columns/{index}", s.handleDeleteColumn)
			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
			r.Get("/history", s.handleHistory)

			// Search and replace
			r.Post("/search", s.handleSearch)
			r.Delete("/search", s.handleClearSearch)
			r.Post("/search/next", s.handleNextMatch)
			r.Post("/search/previous", s.handlePreviousMatch)
			r.Post("/search/replace", s.handleReplaceCurrent)
			r.Post("/search/replace-all", s.handleReplaceAll)

			// Sorting and export
			r.Post("/sort", s.handleSort)
			r.Post("/export", s.handleExport)
			r.Get("/export/preview", s.handleExportPreview)

			// Analysis and cleansing
			r.Get("/analysis/types", s.handleAnalyzeTypes)
			r.Get("/analysis/quality", s.handleAnalyzeQuality)
			r.Post("/cleanse", s.handleCleanse)
			r.Post("/validate", s.handleValidateRules)

			// Script execution
			r.Post("/script", s.handleExecuteScript)
			r.Get("/script/{executionID}", s.handleScriptStatus)
			r.Get("/script/{executionID}/events", s.handleScriptEvents)
			r.Post("/script/{executionID}/apply", s.handleApplyScript)
			r.Delete("/script/{executionID}", s.handleRemoveScript)

			// Chat transcript
			r.Get("/chat", s.handleChatHistory)
			r.Post("/chat", s.handleAppendChat)
			r.Delete("/chat", s.handleClearChat)
		})

		// Audit trail
		r.Get("/audit", s.handleAuditList)
		r.Get("/audit/export", s.handleAuditExport)
		r.Get("/audit/{id}", s.handleAuditEntry)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout, // 0 keeps SSE streams open
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
// TrustedRealIP runs earlier, so RemoteAddr already holds the client IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError writes a minimal JSON error response. Middleware uses it for
// errors raised before a handler runs; handlers use respondError instead.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, message)
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
