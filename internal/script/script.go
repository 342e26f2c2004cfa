// Package script runs JavaScript programs against a grid inside an embedded
// interpreter. Scripts arrive as data (typically generated elsewhere from a
// user prompt), are security-checked, and execute with the grid exposed as a
// read-only `data` global. Analysis scripts return a summary; transformation
// scripts return a change list that the caller applies as one undoable grid
// replacement.
package script

import (
	"time"

	"github.com/google/uuid"
)

// Type says what a script produces.
type Type string

const (
	// TypeAnalysis scripts return {type: "analysis", summary, details}.
	TypeAnalysis Type = "analysis"
	// TypeTransformation scripts return {type: "transformation", changes, preview}.
	TypeTransformation Type = "transformation"
)

// Valid reports whether t is a known script type.
func (t Type) Valid() bool {
	return t == TypeAnalysis || t == TypeTransformation
}

// Script is one executable program plus its provenance.
type Script struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Type        Type      `json:"type"`
	Prompt      string    `json:"prompt,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// New builds a script with a fresh ID.
func New(content string, typ Type, prompt string) Script {
	return Script{
		ID:          uuid.New().String(),
		Content:     content,
		Type:        typ,
		Prompt:      prompt,
		GeneratedAt: time.Now().UTC(),
	}
}
