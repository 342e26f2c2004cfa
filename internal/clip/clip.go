// Package clip bridges grid cell blocks to the OS clipboard as tab-separated
// text, the dialect spreadsheet applications exchange. The engine clipboard
// stays authoritative; this bridge is best-effort and its errors are reported
// but never fatal, since headless hosts have no system clipboard at all.
package clip

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// cellSanitizer flattens characters that would break the TSV structure.
var cellSanitizer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// Encode renders a cell block as tab-separated lines. Tabs and newlines
// inside a cell become spaces so the block shape survives the round trip.
func Encode(block [][]string) string {
	lines := make([]string, len(block))
	for i, row := range block {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellSanitizer.Replace(cell)
		}
		lines[i] = strings.Join(cells, "\t")
	}
	return strings.Join(lines, "\n")
}

// Decode parses tab-separated text into a cell block. A trailing newline,
// which most applications append, does not produce an empty last row.
func Decode(text string) [][]string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\r\n")
	text = strings.TrimSuffix(text, "\n")

	lines := strings.Split(text, "\n")
	block := make([][]string, len(lines))
	for i, line := range lines {
		block[i] = strings.Split(strings.TrimSuffix(line, "\r"), "\t")
	}
	return block
}

// WriteBlock copies a cell block to the system clipboard.
func WriteBlock(block [][]string) error {
	if len(block) == 0 {
		return nil
	}
	if err := clipboard.WriteAll(Encode(block)); err != nil {
		return fmt.Errorf("write system clipboard: %w", err)
	}
	return nil
}

// ReadBlock reads a cell block from the system clipboard. An empty clipboard
// returns a nil block and no error.
func ReadBlock() ([][]string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read system clipboard: %w", err)
	}
	return Decode(text), nil
}
