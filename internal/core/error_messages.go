package core

// error_messages.go defines user-friendly error messages with codes for
// support reference. When users encounter errors, they can quote the error
// code for faster diagnosis.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the configured size limit
//	          Action: Split the file or raise EDITOR_MAX_FILE_SIZE
//	          Patterns: "file too large"
//
//	FILE002 - File not found: The path does not exist
//	          Action: Check the path and try again
//	          Patterns: "no such file"
//
//	FILE003 - Not a file: The path names a directory or special file
//	          Action: Point at a regular .csv or .tsv file
//	          Patterns: "path is not a regular file"
//
//	FILE004 - Unsupported extension: Only .csv and .tsv files open
//	          Action: Rename or convert the file to .csv or .tsv
//	          Patterns: "unsupported file extension"
//
//	FILE005 - Malformed file: The file could not be parsed as CSV/TSV
//	          Action: Check for unbalanced quotes or truncated lines
//	          Patterns: "parse records"
//
//	FILE006 - No save target: The session has no backing file yet
//	          Action: Save with an explicit path first
//	          Patterns: "no file path"
//
// # Encoding Errors (ENC001-ENC099)
//
//	ENC001 - Unknown encoding: The requested encoding is not supported
//	         Action: Use utf-8, utf-16le, utf-16be, windows-1252 or iso-8859-1
//	         Patterns: "unknown encoding"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found: The session has expired or was closed
//	         Action: Reopen the file
//	         Patterns: "session not found"
//
//	SES002 - Too many sessions: The open-session cap was reached
//	         Action: Close unused sessions and try again
//	         Patterns: "too many open sessions"
//
//	SES003 - Unsaved changes: Closing would discard edits
//	         Action: Save first, or force close to discard
//	         Patterns: "unsaved changes"
//
// # Sort Errors (SORT001-SORT099)
//
//	SORT001 - Bad sort request: Sort columns are missing or out of range
//	          Action: Sort on one or two existing columns
//	          Patterns: "sort column", "unknown sort direction"
//
//	SORT002 - Grid changed: The grid was edited while sorting
//	          Action: Run the sort again
//	          Patterns: "grid changed while sorting"
//
// # Grid Errors (GRID001-GRID099)
//
//	GRID001 - Out of range: A row or column index is outside the grid
//	          Action: Refresh the view and retry
//	          Patterns: "index out of range", "out of range"
//
//	GRID002 - Empty column name: A column name cannot be blank
//	          Action: Provide a non-empty name
//	          Patterns: "empty column name"
//
// # Search Errors (SRCH001-SRCH099)
//
//	SRCH001 - Bad pattern: The search pattern is not a valid regex
//	          Action: Fix the expression or switch off regex mode
//	          Patterns: "invalid search pattern"
//
// # Script Errors (SCR001-SCR099)
//
//	SCR001 - Forbidden identifier: The script uses a blocked construct
//	         Action: Remove the flagged identifier and regenerate
//	         Patterns: "forbidden identifier"
//
//	SCR002 - System busy: Too many scripts are running
//	         Action: Wait for a run to finish and try again
//	         Patterns: "too many concurrent script executions"
//
//	SCR003 - Script timeout: The script exceeded its time budget
//	         Action: Simplify the script or reduce the data size
//	         Patterns: "script timed out"
//
//	SCR004 - Execution not found: The run finished and was cleaned up
//	         Action: Start a new execution
//	         Patterns: "execution not found"
//
//	SCR005 - Empty script: No script content was provided
//	         Action: Provide a script body
//	         Patterns: "script content is empty"
//
//	SCR006 - Script too large: The script exceeds the size limit
//	         Action: Shorten the script
//	         Patterns: "exceeds size limit"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Unknown format: The export format key is not registered
//	         Action: Pick a format from the formats listing
//	         Patterns: "unknown export format"
//
//	EXP002 - No text preview: Binary formats cannot be previewed as text
//	         Action: Export to a file instead
//	         Patterns: "binary format has no text preview"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Unknown rule: The validation rule type is not recognized
//	         Action: Use range, length, pattern, required or unique
//	         Patterns: "unknown rule type"
//
//	VAL002 - Bad rules document: The YAML rule set failed to parse
//	         Action: Fix the YAML syntax
//	         Patterns: "parse validation rules"
//
//	VAL003 - Unknown cleanse option: The cleansing request is not recognized
//	         Action: Check the action, fill method and format fields
//	         Patterns: "unknown cleanse action", "unknown fill method",
//	                   "unknown standardize format"
//
// # Settings Errors (SET001-SET099)
//
//	SET001 - Invalid settings: A preference value failed validation
//	         Action: Fix the flagged fields and save again
//	         Patterns: "invalid settings"
//
// # Audit Errors (AUD001-AUD099)
//
//	AUD001 - Audit disabled: No database is configured
//	         Action: Set DATABASE_URL to enable the audit trail
//	         Patterns: "audit trail is disabled"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused: Unable to connect to the database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB002 - Connection reset: The database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB003 - Deadlock: The database was busy with conflicting operations
//	        Action: Please try again
//	        Patterns: "deadlock"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: The request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: The request timed out
//	         Action: Try a smaller operation or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Error patterns are matched case-insensitively using strings.Contains. The
// first matching pattern wins, so more specific patterns are defined before
// general ones ("index out of range" before "out of range", the sort group
// before the grid group). Multiple patterns can map to the same code.
//
// When a user reports ERR000, check the application logs for the original
// technical error.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Matched with strings.Contains; first match wins, so specific
// patterns come before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE006)
	// These errors occur when opening, parsing or saving grid files.
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the configured size limit",
			Action:  "Split the file or raise EDITOR_MAX_FILE_SIZE",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The file does not exist",
			Action:  "Check the path and try again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "path is not a regular file",
		msg: UserMessage{
			Message: "The path does not name a regular file",
			Action:  "Point at a regular .csv or .tsv file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unsupported file extension",
		msg: UserMessage{
			Message: "Only .csv and .tsv files can be opened",
			Action:  "Rename or convert the file to .csv or .tsv",
			Code:    "FILE004",
		},
	},
	{
		pattern: "parse records",
		msg: UserMessage{
			Message: "The file could not be parsed as CSV/TSV",
			Action:  "Check for unbalanced quotes or truncated lines",
			Code:    "FILE005",
		},
	},
	{
		pattern: "no file path",
		msg: UserMessage{
			Message: "The session has no backing file yet",
			Action:  "Save with an explicit path first",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Encoding Errors (ENC001)
	// =========================================================================
	{
		pattern: "unknown encoding",
		msg: UserMessage{
			Message: "The requested encoding is not supported",
			Action:  "Use utf-8, utf-16le, utf-16be, windows-1252 or iso-8859-1",
			Code:    "ENC001",
		},
	},

	// =========================================================================
	// Session Errors (SES001-SES003)
	// These errors occur when a session is missing, capped or dirty.
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "The session has expired or was closed",
			Action:  "Reopen the file",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many open sessions",
		msg: UserMessage{
			Message: "The open-session limit was reached",
			Action:  "Close unused sessions and try again",
			Code:    "SES002",
		},
	},
	{
		pattern: "unsaved changes",
		msg: UserMessage{
			Message: "Closing now would discard unsaved edits",
			Action:  "Save first, or force close to discard",
			Code:    "SES003",
		},
	},

	// =========================================================================
	// Sort Errors (SORT001-SORT002)
	// Before the grid group: sort errors also mention "out of range".
	// =========================================================================
	{
		pattern: "grid changed while sorting",
		msg: UserMessage{
			Message: "The grid was edited while sorting",
			Action:  "Run the sort again",
			Code:    "SORT002",
		},
	},
	{
		pattern: "sort column",
		msg: UserMessage{
			Message: "Sort columns are missing or out of range",
			Action:  "Sort on one or two existing columns",
			Code:    "SORT001",
		},
	},
	{
		pattern: "unknown sort direction",
		msg: UserMessage{
			Message: "The sort direction is not recognized",
			Action:  "Use asc or desc",
			Code:    "SORT001",
		},
	},

	// =========================================================================
	// Grid Errors (GRID001-GRID002)
	// =========================================================================
	{
		pattern: "index out of range",
		msg: UserMessage{
			Message: "A row or column index is outside the grid",
			Action:  "Refresh the view and retry",
			Code:    "GRID001",
		},
	},
	{
		pattern: "out of range",
		msg: UserMessage{
			Message: "A row or column index is outside the grid",
			Action:  "Refresh the view and retry",
			Code:    "GRID001",
		},
	},
	{
		pattern: "empty column name",
		msg: UserMessage{
			Message: "A column name cannot be blank",
			Action:  "Provide a non-empty name",
			Code:    "GRID002",
		},
	},

	// =========================================================================
	// Search Errors (SRCH001)
	// =========================================================================
	{
		pattern: "invalid search pattern",
		msg: UserMessage{
			Message: "The search pattern is not a valid regular expression",
			Action:  "Fix the expression or switch off regex mode",
			Code:    "SRCH001",
		},
	},

	// =========================================================================
	// Script Errors (SCR001-SCR006)
	// These errors occur when validating or running generated scripts.
	// =========================================================================
	{
		pattern: "forbidden identifier",
		msg: UserMessage{
			Message: "The script uses a blocked construct",
			Action:  "Remove the flagged identifier and regenerate the script",
			Code:    "SCR001",
		},
	},
	{
		pattern: "too many concurrent script executions",
		msg: UserMessage{
			Message: "Too many scripts are running",
			Action:  "Wait for a run to finish and try again",
			Code:    "SCR002",
		},
	},
	{
		pattern: "script timed out",
		msg: UserMessage{
			Message: "The script exceeded its time budget",
			Action:  "Simplify the script or reduce the data size",
			Code:    "SCR003",
		},
	},
	{
		pattern: "execution not found",
		msg: UserMessage{
			Message: "The script execution has finished and been cleaned up",
			Action:  "Start a new execution",
			Code:    "SCR004",
		},
	},
	{
		pattern: "script content is empty",
		msg: UserMessage{
			Message: "No script content was provided",
			Action:  "Provide a script body",
			Code:    "SCR005",
		},
	},
	{
		pattern: "exceeds size limit",
		msg: UserMessage{
			Message: "The script exceeds the size limit",
			Action:  "Shorten the script",
			Code:    "SCR006",
		},
	},

	// =========================================================================
	// Export Errors (EXP001-EXP002)
	// =========================================================================
	{
		pattern: "unknown export format",
		msg: UserMessage{
			Message: "The export format is not registered",
			Action:  "Pick a format from the formats listing",
			Code:    "EXP001",
		},
	},
	{
		pattern: "binary format has no text preview",
		msg: UserMessage{
			Message: "Binary formats cannot be previewed as text",
			Action:  "Export to a file instead",
			Code:    "EXP002",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL003)
	// These errors occur when parsing or running rule sets and cleansers.
	// =========================================================================
	{
		pattern: "unknown rule type",
		msg: UserMessage{
			Message: "The validation rule type is not recognized",
			Action:  "Use range, length, pattern, required or unique",
			Code:    "VAL001",
		},
	},
	{
		pattern: "parse validation rules",
		msg: UserMessage{
			Message: "The YAML rule set failed to parse",
			Action:  "Fix the YAML syntax",
			Code:    "VAL002",
		},
	},
	{
		pattern: "unknown cleanse action",
		msg: UserMessage{
			Message: "The cleansing action is not recognized",
			Action:  "Check the action field against the documented set",
			Code:    "VAL003",
		},
	},
	{
		pattern: "unknown fill method",
		msg: UserMessage{
			Message: "The fill method is not recognized",
			Action:  "Use value, mean, median or mode",
			Code:    "VAL003",
		},
	},
	{
		pattern: "unknown standardize format",
		msg: UserMessage{
			Message: "The standardize format is not recognized",
			Action:  "Check the format field against the documented set",
			Code:    "VAL003",
		},
	},

	// =========================================================================
	// Settings Errors (SET001)
	// =========================================================================
	{
		pattern: "invalid settings",
		msg: UserMessage{
			Message: "A preference value failed validation",
			Action:  "Fix the flagged fields and save again",
			Code:    "SET001",
		},
	},

	// =========================================================================
	// Audit Errors (AUD001)
	// =========================================================================
	{
		pattern: "audit trail is disabled",
		msg: UserMessage{
			Message: "The audit trail is not available",
			Action:  "Set DATABASE_URL to enable the audit trail",
			Code:    "AUD001",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "The database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Try a smaller operation or check your connection",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000). Support staff
// should check application logs for the original technical error when users
// report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. It searches
// through known error patterns (case-insensitive) and returns the first
// match. If no pattern matches, the generic ERR000 fallback is returned.
//
// Example:
//
//	err := errors.New("session not found: 1234")
//	msg := MapError(err)
//	// msg.Code == "SES001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The session has expired or was closed (Code: SES001). Reopen the file"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown
// to users as-is. Returns false for the generic ERR000 fallback, where the
// raw error belongs in the logs rather than the response.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message. The
// original error stays available for logging while Error() reads cleanly.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a
// user-friendly message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
