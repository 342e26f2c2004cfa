package export

// registry.go holds the format registry. Formats self-register at package
// init; the registry backs both Export dispatch and the format discovery
// endpoint.

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/celled/celled/internal/engine"
)

// FormatInfo describes one export format for discovery.
type FormatInfo struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Extension string `json:"extension"`
	MIME      string `json:"mime"`
	Group     string `json:"group"`

	// Binary formats cannot be previewed as text.
	Binary bool `json:"binary"`
}

// Format pairs discovery info with its renderer.
type Format struct {
	Info   FormatInfo
	Render func(w io.Writer, grid engine.Grid, opts Options) error
}

var (
	registry   = make(map[string]Format)
	registryMu sync.RWMutex
)

// Register adds a format to the registry.
// Panics if a format with the same key is already registered.
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[f.Info.Key]; exists {
		panic(fmt.Sprintf("export format already registered: %s", f.Info.Key))
	}
	registry[f.Info.Key] = f
}

// Get returns a format by key.
// Returns false if not found.
func Get(key string) (Format, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[key]
	return f, ok
}

// All returns every registered format.
// Sorted by group then by key for consistent ordering.
func All() []FormatInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]FormatInfo, 0, len(registry))
	for _, f := range registry {
		result = append(result, f.Info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Group != result[j].Group {
			return result[i].Group < result[j].Group
		}
		return result[i].Key < result[j].Key
	})

	return result
}

// ByGroup returns the formats in a specific group.
// Sorted by key for consistent ordering.
func ByGroup(group string) []FormatInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []FormatInfo
	for _, f := range registry {
		if f.Info.Group == group {
			result = append(result, f.Info)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// Groups returns all unique group names.
// Sorted alphabetically.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, f := range registry {
		seen[f.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// Count returns the number of registered formats.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
