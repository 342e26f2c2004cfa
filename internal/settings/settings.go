// Package settings persists the user's import/export preferences as a JSON
// file in the data directory. The file is tiny and rewritten whole on every
// update; a missing or unreadable file falls back to defaults so a corrupt
// settings file never blocks the editor.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileName is the settings file name inside the data directory.
const FileName = "settings.json"

// ImportExport holds every knob that shapes how files are read, written, and
// previewed.
type ImportExport struct {
	DefaultEncoding  string `json:"defaultEncoding"`
	DefaultDelimiter string `json:"defaultDelimiter"`
	AutoDetectTypes  bool   `json:"autoDetectTypes"`
	TrimWhitespace   bool   `json:"trimWhitespace"`
	SkipEmptyRows    bool   `json:"skipEmptyRows"`
	QuoteCharacter   string `json:"quoteCharacter"`
	EscapeCharacter  string `json:"escapeCharacter"`
	DateFormat       string `json:"dateFormat"`
	DatetimeFormat   string `json:"datetimeFormat"`
	DecimalSeparator string `json:"decimalSeparator"`
	ThousandsSep     string `json:"thousandsSeparator"`
	NullValue        string `json:"nullValueRepresentation"`
	MaxPreviewRows   int    `json:"maxPreviewRows"`
	BackupOnSave     bool   `json:"createBackupOnSave"`
	BackupDirectory  string `json:"backupDirectory,omitempty"`
}

// Defaults returns the out-of-the-box settings.
func Defaults() ImportExport {
	return ImportExport{
		DefaultEncoding:  "UTF-8",
		DefaultDelimiter: ",",
		AutoDetectTypes:  true,
		TrimWhitespace:   false,
		SkipEmptyRows:    false,
		QuoteCharacter:   `"`,
		EscapeCharacter:  `\`,
		DateFormat:       "2006-01-02",
		DatetimeFormat:   "2006-01-02 15:04:05",
		DecimalSeparator: ".",
		ThousandsSep:     ",",
		NullValue:        "",
		MaxPreviewRows:   100,
		BackupOnSave:     false,
	}
}

// Validate reports every problem with the settings at once.
func (s ImportExport) Validate() error {
	var problems []string
	if len([]rune(s.DefaultDelimiter)) != 1 {
		problems = append(problems, "defaultDelimiter must be a single character")
	}
	if len([]rune(s.QuoteCharacter)) != 1 {
		problems = append(problems, "quoteCharacter must be a single character")
	}
	if s.MaxPreviewRows < 1 {
		problems = append(problems, "maxPreviewRows must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Manager serializes access to the settings file. Reads return a copy, so
// callers cannot mutate the shared state behind the lock.
type Manager struct {
	mu      sync.RWMutex
	path    string
	current ImportExport
}

// NewManager loads settings from dataDir, falling back to defaults when the
// file is missing or unreadable.
func NewManager(dataDir string) (*Manager, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	m := &Manager{
		path:    filepath.Join(dataDir, FileName),
		current: Defaults(),
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return m, nil
	}
	var loaded ImportExport
	if err := json.Unmarshal(data, &loaded); err == nil && loaded.Validate() == nil {
		m.current = loaded
	}
	return m, nil
}

// Get returns the current settings.
func (m *Manager) Get() ImportExport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update validates and persists new settings.
func (m *Manager) Update(s ImportExport) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(s); err != nil {
		return err
	}
	m.current = s
	return nil
}

// Reset restores and persists the defaults, returning them.
func (m *Manager) Reset() (ImportExport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	def := Defaults()
	if err := m.write(def); err != nil {
		return ImportExport{}, err
	}
	m.current = def
	return def, nil
}

func (m *Manager) write(s ImportExport) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(m.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
