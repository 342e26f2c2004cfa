// Package chat persists the conversation transcript that accompanies a CSV
// file. Each message may carry a generated script; the newest one is what an
// "apply" request targets. Histories are keyed by the CSV path and stored as
// JSON files under <data dir>/chat, named by the SHA-256 of the path so any
// path maps to a flat, filesystem-safe filename.
package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/celled/celled/internal/script"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one conversation entry. Assistant messages that produced a
// script carry it inline.
type Message struct {
	ID      string         `json:"id"`
	Role    Role           `json:"role"`
	Content string         `json:"content"`
	At      time.Time      `json:"timestamp"`
	Script  *script.Script `json:"script,omitempty"`
}

// NewMessage creates a message with a fresh ID and timestamp. Attach a script
// by setting the Script field before appending.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:      uuid.New().String(),
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	}
}

// History is the full transcript for one CSV file.
type History struct {
	CSVPath   string    `json:"csvPath"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LatestScript returns the script of the most recent message that has one,
// or nil when no message carries a script.
func (h History) LatestScript() *script.Script {
	for i := len(h.Messages) - 1; i >= 0; i-- {
		if h.Messages[i].Script != nil {
			return h.Messages[i].Script
		}
	}
	return nil
}

// Store reads and writes chat histories on disk.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates a store rooted at <dataDir>/chat, creating the directory
// if needed.
func NewStore(dataDir string) (*Store, error) {
	dir := filepath.Join(dataDir, "chat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chat directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Load returns the history for csvPath. A file that does not exist yet
// yields a fresh empty history, not an error.
func (s *Store) Load(csvPath string) (History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(csvPath)
}

// Append adds msg to the history for csvPath, persists it, and returns the
// updated history.
func (s *Store) Append(csvPath string, msg Message) (History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.load(csvPath)
	if err != nil {
		return History{}, err
	}

	h.Messages = append(h.Messages, msg)
	h.UpdatedAt = time.Now().UTC()

	if err := s.write(h); err != nil {
		return History{}, err
	}
	return h, nil
}

// Clear deletes the history for csvPath. Clearing a history that was never
// written is not an error.
func (s *Store) Clear(csvPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(csvPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove chat history: %w", err)
	}
	return nil
}

func (s *Store) load(csvPath string) (History, error) {
	data, err := os.ReadFile(s.path(csvPath))
	if os.IsNotExist(err) {
		now := time.Now().UTC()
		return History{CSVPath: csvPath, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return History{}, fmt.Errorf("read chat history: %w", err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return History{}, fmt.Errorf("parse chat history: %w", err)
	}
	return h, nil
}

func (s *Store) write(h History) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path(h.CSVPath), data, 0o644); err != nil {
		return fmt.Errorf("write chat history: %w", err)
	}
	return nil
}

// path maps a CSV path to its history file.
func (s *Store) path(csvPath string) string {
	sum := sha256.Sum256([]byte(csvPath))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}
