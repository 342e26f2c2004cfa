// Package core provides the business logic for the grid editor.
//
// This package sits between the transport layer and the domain packages,
// containing all behavior independent of any UI or HTTP concern. It can be
// driven by web handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Sessions: every open file is a [Session] holding one [engine.Editor].
//     The editor itself is not safe for concurrent use; a per-session mutex
//     serializes all engine calls so there is exactly one logical writer.
//   - Service: the main entry point for all operations (files, mutations,
//     search, sort, export, analysis, scripts, chat, settings, audit).
//   - Collaborators: csvio, meta, gridsort, export, analysis, script, chat,
//     settings and clip do the domain work; the service wires them to
//     sessions and the audit trail.
//
// # Sessions
//
// [Service.OpenFile] reads a CSV/TSV file (dialect detected), loads its
// metadata sidecar, and registers a session keyed by a fresh UUID. Sessions
// are closed explicitly or reaped by the janitor once idle and clean.
// [Service.CloseSession] refuses to drop unsaved changes unless forced.
//
// # External grid computations
//
// Sort and row/column moves are computed outside the engine, without holding
// the session lock. The grid revision is captured before dispatch and
// compared when the result comes back; if the grid changed in between the
// result is discarded and the call fails with [gridsort.ErrGridChanged].
// Script execution follows the same shape through [script.Executor], with
// the change list applied back through the editor as one undoable entry.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: file access, size, format
//   - ENC001: character encodings
//   - SES001-SES003: session lifecycle
//   - SORT001-SORT002: sort specs and the stale-grid race
//   - GRID001-GRID002: grid index and shape errors
//   - SRCH001: search patterns
//   - SCR001-SCR006: script validation and execution
//   - EXP001-EXP002: export formats
//   - VAL001-VAL003: validation rules and cleansing options
//   - AUD001: audit availability
//   - DB001-DB003: database connectivity
//   - REQ001-REQ002: request cancellation and timeouts
//
// # Audit Trail
//
// Every mutating operation writes an audit entry (action, severity, file,
// position, old/new values, client metadata) through pgx. The database is
// optional: with a nil pool auditing is disabled and the service runs fully
// in-memory. Old entries rotate from audit_log to audit_log_archive on a
// schedule.
package core
