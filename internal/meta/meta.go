package meta

// meta.go implements the sidecar metadata file written next to each CSV as
// <path>.csvmeta. The sidecar remembers what cannot be recovered from the
// CSV itself: the dialect it was opened with, row/column counts from the
// last save, and the sort applied. Sidecar problems are never fatal to
// editing; callers treat a missing sidecar as empty metadata.

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/celled/celled/internal/gridsort"
)

// Extension is appended to the CSV path to name its sidecar.
const Extension = ".csvmeta"

// FileMetadata is the persisted sidecar payload.
type FileMetadata struct {
	Filename      string          `json:"filename"`
	Path          string          `json:"path"`
	RowCount      int             `json:"rowCount"`
	ColumnCount   int             `json:"columnCount"`
	HasHeaders    bool            `json:"hasHeaders"`
	Delimiter     string          `json:"delimiter"`
	Encoding      string          `json:"encoding"`
	FileSizeBytes int64           `json:"fileSizeBytes"`
	LastModified  time.Time       `json:"lastModified"`
	SortState     *gridsort.State `json:"sortState,omitempty"`
}

// SidecarPath returns the sidecar path for a CSV path.
func SidecarPath(csvPath string) string {
	return csvPath + Extension
}

// Manager loads and saves sidecar files.
type Manager struct{}

// NewManager returns a sidecar manager.
func NewManager() *Manager {
	return &Manager{}
}

// Exists reports whether csvPath has a sidecar.
func (m *Manager) Exists(csvPath string) bool {
	info, err := os.Stat(SidecarPath(csvPath))
	return err == nil && info.Mode().IsRegular()
}

// Load reads the sidecar for csvPath. A missing sidecar returns an empty
// FileMetadata and no error.
func (m *Manager) Load(csvPath string) (*FileMetadata, error) {
	data, err := os.ReadFile(SidecarPath(csvPath))
	if os.IsNotExist(err) {
		return &FileMetadata{Path: csvPath}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	var md FileMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parse sidecar: %w", err)
	}
	return &md, nil
}

// Save writes the sidecar for csvPath as indented JSON.
func (m *Manager) Save(csvPath string, md *FileMetadata) error {
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sidecar: %w", err)
	}
	if err := os.WriteFile(SidecarPath(csvPath), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	return nil
}

// Delete removes the sidecar for csvPath. Deleting a missing sidecar is not
// an error.
func (m *Manager) Delete(csvPath string) error {
	err := os.Remove(SidecarPath(csvPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete sidecar: %w", err)
	}
	return nil
}
