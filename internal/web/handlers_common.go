// Package web provides HTTP handlers for the grid editor API.
// This file contains shared utilities and helper functions used across handlers.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/celled/celled/internal/gridsort"
)

// maxBodySize caps JSON request bodies. Scripts are limited to 64KB by the
// executor; a 1MB body bound leaves room for bulk paste payloads.
const maxBodySize = 1 << 20

// decodeJSON reads the request body into v with a size cap.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// sessionID extracts the session ID path parameter.
func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

// indexParam parses the {index} path parameter.
func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", raw)
	}
	return i, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseBoolParam reads a query parameter as a boolean. Absent or malformed
// values report false.
func parseBoolParam(r *http.Request, name string) bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && b
}

// parseSortSpecs parses comma-separated sort parameters from the URL, as in
// ?sort=0,2&dir=asc,desc. Column values are zero-based indexes; entries past
// the two-column limit are dropped.
func parseSortSpecs(r *http.Request) []gridsort.Spec {
	sortStr := r.URL.Query().Get("sort")
	dirStr := r.URL.Query().Get("dir")

	if sortStr == "" {
		return nil
	}

	cols := strings.Split(sortStr, ",")
	dirs := strings.Split(dirStr, ",")

	var specs []gridsort.Spec
	for i, col := range cols {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		idx, err := strconv.Atoi(col)
		if err != nil {
			continue
		}
		dir := gridsort.Ascending
		if i < len(dirs) && strings.TrimSpace(dirs[i]) == "desc" {
			dir = gridsort.Descending
		}
		specs = append(specs, gridsort.Spec{Column: idx, Dir: dir})
		if len(specs) >= gridsort.MaxSortColumns {
			break
		}
	}
	return specs
}

// badRequest writes a 400 with the given message, bypassing error mapping.
// Used for malformed requests that never reach the service layer.
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, message)
}
