package core

import (
	"errors"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "file too large maps correctly",
			err:         errors.New("file too large: 209715201 bytes (limit 104857600)"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the configured size limit",
		},
		{
			name:        "missing file maps correctly",
			err:         errors.New("stat /tmp/x.csv: no such file or directory"),
			wantCode:    "FILE002",
			wantMessage: "The file does not exist",
		},
		{
			name:        "unsupported extension maps correctly",
			err:         errors.New(`unsupported file extension ".xlsx"`),
			wantCode:    "FILE004",
			wantMessage: "Only .csv and .tsv files can be opened",
		},
		{
			name:        "blank session save maps correctly",
			err:         errors.New("no file path: session has no backing file, provide a save path"),
			wantCode:    "FILE006",
			wantMessage: "The session has no backing file yet",
		},
		{
			name:        "session not found maps correctly",
			err:         errors.New("session not found: 1234"),
			wantCode:    "SES001",
			wantMessage: "The session has expired or was closed",
		},
		{
			name:        "session limit maps correctly",
			err:         errors.New("too many open sessions (limit 32)"),
			wantCode:    "SES002",
			wantMessage: "The open-session limit was reached",
		},
		{
			name:        "dirty close maps correctly",
			err:         errors.New("unsaved changes in session 1234: save first or force close"),
			wantCode:    "SES003",
			wantMessage: "Closing now would discard unsaved edits",
		},
		{
			name:        "stale sort maps before the generic range message",
			err:         errors.New("grid changed while sorting"),
			wantCode:    "SORT002",
			wantMessage: "The grid was edited while sorting",
		},
		{
			name:        "sort column out of range stays a sort error",
			err:         errors.New("sort column 9 out of range"),
			wantCode:    "SORT001",
			wantMessage: "Sort columns are missing or out of range",
		},
		{
			name:        "missing sort columns maps correctly",
			err:         errors.New("no sort columns"),
			wantCode:    "SORT001",
			wantMessage: "Sort columns are missing or out of range",
		},
		{
			name:        "too many sort columns maps correctly",
			err:         errors.New("at most 2 sort columns, got 3"),
			wantCode:    "SORT001",
			wantMessage: "Sort columns are missing or out of range",
		},
		{
			name:        "bad sort direction maps correctly",
			err:         errors.New(`unknown sort direction "sideways"`),
			wantCode:    "SORT001",
			wantMessage: "The sort direction is not recognized",
		},
		{
			name:        "grid index maps correctly",
			err:         errors.New("update cell (99, 0): index out of range"),
			wantCode:    "GRID001",
			wantMessage: "A row or column index is outside the grid",
		},
		{
			name:        "move range maps correctly",
			err:         errors.New("move row: target 9 out of range"),
			wantCode:    "GRID001",
			wantMessage: "A row or column index is outside the grid",
		},
		{
			name:        "bad regex maps correctly",
			err:         errors.New("invalid search pattern: error parsing regexp"),
			wantCode:    "SRCH001",
			wantMessage: "The search pattern is not a valid regular expression",
		},
		{
			name:        "forbidden identifier maps correctly",
			err:         errors.New(`script uses forbidden identifier "eval"`),
			wantCode:    "SCR001",
			wantMessage: "The script uses a blocked construct",
		},
		{
			name:        "script limiter maps correctly",
			err:         errors.New("too many concurrent script executions, please try again later"),
			wantCode:    "SCR002",
			wantMessage: "Too many scripts are running",
		},
		{
			name:        "script timeout maps correctly",
			err:         errors.New("script timed out after 30s"),
			wantCode:    "SCR003",
			wantMessage: "The script exceeded its time budget",
		},
		{
			name:        "missing execution maps correctly",
			err:         errors.New("execution not found: abcd"),
			wantCode:    "SCR004",
			wantMessage: "The script execution has finished and been cleaned up",
		},
		{
			name:        "unknown export format maps correctly",
			err:         errors.New(`unknown export format: "parquet"`),
			wantCode:    "EXP001",
			wantMessage: "The export format is not registered",
		},
		{
			name:        "binary preview maps correctly",
			err:         errors.New(`binary format has no text preview: "xlsx"`),
			wantCode:    "EXP002",
			wantMessage: "Binary formats cannot be previewed as text",
		},
		{
			name:        "unknown cleanse action maps correctly",
			err:         errors.New(`unknown cleanse action "polish"`),
			wantCode:    "VAL003",
			wantMessage: "The cleansing action is not recognized",
		},
		{
			name:        "invalid settings maps correctly",
			err:         errors.New("invalid settings: defaultDelimiter must be a single character"),
			wantCode:    "SET001",
			wantMessage: "A preference value failed validation",
		},
		{
			name:        "audit disabled maps correctly",
			err:         errors.New("audit trail is disabled: no database configured"),
			wantCode:    "AUD001",
			wantMessage: "The audit trail is not available",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode:    "DB001",
			wantMessage: "Unable to connect to the database",
		},
		{
			name:        "timeout maps correctly",
			err:         errors.New("context deadline exceeded"),
			wantCode:    "REQ002",
			wantMessage: "The request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("SESSION NOT FOUND: abcd"),
			wantCode:    "SES001",
			wantMessage: "The session has expired or was closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("session not found: 1234")
	result := FormatUserError(err)

	expected := "The session has expired or was closed (Code: SES001). Reopen the file"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("too many open sessions (limit 4)"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("session not found: 1234")
		userErr := NewUserError(techErr)

		if userErr.Error() != "The session has expired or was closed" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
