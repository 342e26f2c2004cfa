package export

// export.go is the entry point: Export renders a grid onto a writer in a
// registered format, ExportFile targets a path, and Preview renders a
// truncated copy for display.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/celled/celled/internal/engine"
)

// ErrUnknownFormat is returned when the requested format key is not
// registered.
var ErrUnknownFormat = errors.New("unknown export format")

// ErrBinaryPreview is returned when a binary format is asked for a text
// preview.
var ErrBinaryPreview = errors.New("binary format has no text preview")

// Options selects the format and its rendering switches.
type Options struct {
	Format         string `json:"format"`
	IncludeHeaders bool   `json:"includeHeaders"`
	PrettyPrint    bool   `json:"prettyPrint"`
}

// Export renders grid onto w.
func Export(w io.Writer, grid engine.Grid, opts Options) error {
	f, ok := Get(opts.Format)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if err := f.Render(w, grid, opts); err != nil {
		return fmt.Errorf("render %s: %w", opts.Format, err)
	}
	return nil
}

// ExportFile renders grid into a newly created (or truncated) file at path.
func ExportFile(path string, grid engine.Grid, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Export(f, grid, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Preview renders at most maxRows data rows of grid and returns the result
// as text. maxRows <= 0 renders everything. Binary formats are rejected.
func Preview(grid engine.Grid, opts Options, maxRows int) (string, error) {
	f, ok := Get(opts.Format)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if f.Info.Binary {
		return "", fmt.Errorf("%w: %q", ErrBinaryPreview, opts.Format)
	}

	truncated := grid
	if maxRows > 0 && grid.RowCount() > maxRows {
		truncated = engine.NewGrid(grid.Headers, grid.Rows[:maxRows])
	}

	var buf bytes.Buffer
	if err := Export(&buf, truncated, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}
