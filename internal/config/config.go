// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Editor   EditorConfig
	Script   ScriptConfig
	Audit    AuditConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for SSE)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
// The database backs the audit trail only; when URL is empty the
// application runs without one and auditing is disabled.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (optional)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// EditorConfig holds grid editing session settings.
type EditorConfig struct {
	// DataDir is where settings and chat transcripts are stored (default: ./data)
	DataDir string `env:"EDITOR_DATA_DIR" default:"./data"`

	// HistoryLimit is the undo/redo depth per session (default: 100)
	HistoryLimit int `env:"EDITOR_HISTORY_LIMIT" default:"100"`

	// ChunkSize is the default number of rows returned per chunk request (default: 1000)
	ChunkSize int `env:"EDITOR_CHUNK_SIZE" default:"1000"`

	// MaxSessions is the maximum number of concurrently open files (default: 32)
	MaxSessions int `env:"EDITOR_MAX_SESSIONS" default:"32"`

	// SessionIdleTimeout is how long an untouched session survives (default: 30m)
	SessionIdleTimeout time.Duration `env:"EDITOR_SESSION_IDLE_TIMEOUT" default:"30m"`

	// SessionSweepInterval is how often idle sessions are reaped (default: 5m)
	SessionSweepInterval time.Duration `env:"EDITOR_SESSION_SWEEP_INTERVAL" default:"5m"`

	// MaxFileSize is the maximum CSV file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"EDITOR_MAX_FILE_SIZE" default:"104857600"`
}

// ScriptConfig holds JavaScript execution settings.
type ScriptConfig struct {
	// MaxConcurrent is the maximum number of parallel script executions (default: 2)
	MaxConcurrent int `env:"SCRIPT_MAX_CONCURRENT" default:"2"`

	// MaxWait is how long to wait for an execution slot (default: 10s)
	MaxWait time.Duration `env:"SCRIPT_MAX_WAIT" default:"10s"`

	// Timeout is the maximum duration for a single script run (default: 30s)
	Timeout time.Duration `env:"SCRIPT_TIMEOUT" default:"30s"`
}

// AuditConfig holds audit trail retention settings.
type AuditConfig struct {
	// RetentionDays is days to keep entries in the hot table (default: 90)
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"90"`

	// RetentionYears is years to keep archived entries (default: 7)
	RetentionYears int `env:"AUDIT_RETENTION_YEARS" default:"7"`

	// ArchiveInterval is how often to run the archive job (default: 24h)
	ArchiveInterval time.Duration `env:"AUDIT_ARCHIVE_INTERVAL" default:"24h"`

	// BatchSize is rows to process per archive batch (default: 5000)
	BatchSize int `env:"AUDIT_BATCH_SIZE" default:"5000"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey enables API key authentication on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
