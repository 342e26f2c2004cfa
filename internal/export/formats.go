package export

// formats.go implements the text renderers: delimited (csv, tsv), markdown
// tables, and the two JSON shapes. The XLSX renderer lives in xlsx.go.

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/celled/celled/internal/engine"
)

func init() {
	Register(Format{
		Info: FormatInfo{
			Key: "csv", Label: "CSV", Extension: ".csv",
			MIME: "text/csv", Group: "delimited",
		},
		Render: func(w io.Writer, grid engine.Grid, opts Options) error {
			return renderDelimited(w, grid, opts, ',')
		},
	})
	Register(Format{
		Info: FormatInfo{
			Key: "tsv", Label: "TSV", Extension: ".tsv",
			MIME: "text/tab-separated-values", Group: "delimited",
		},
		Render: func(w io.Writer, grid engine.Grid, opts Options) error {
			return renderDelimited(w, grid, opts, '\t')
		},
	})
	Register(Format{
		Info: FormatInfo{
			Key: "markdown", Label: "Markdown table", Extension: ".md",
			MIME: "text/markdown", Group: "document",
		},
		Render: renderMarkdown,
	})
	Register(Format{
		Info: FormatInfo{
			Key: "json-array", Label: "JSON (array of arrays)", Extension: ".json",
			MIME: "application/json", Group: "structured",
		},
		Render: renderJSONArray,
	})
	Register(Format{
		Info: FormatInfo{
			Key: "json-object", Label: "JSON (array of objects)", Extension: ".json",
			MIME: "application/json", Group: "structured",
		},
		Render: renderJSONObject,
	})
}

func renderDelimited(w io.Writer, grid engine.Grid, opts Options, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if opts.IncludeHeaders && len(grid.Headers) > 0 {
		if err := cw.Write(grid.Headers); err != nil {
			return err
		}
	}
	for _, row := range grid.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// renderMarkdown writes a pipe table with columns padded to their widest
// cell. Widths are display widths, so East Asian text stays aligned.
func renderMarkdown(w io.Writer, grid engine.Grid, opts Options) error {
	cols := grid.ColumnCount()
	if cols == 0 {
		return nil
	}

	widths := make([]int, cols)
	for c, h := range grid.Headers {
		widths[c] = runewidth.StringWidth(escapeMarkdown(h))
	}
	for _, row := range grid.Rows {
		for c := 0; c < cols && c < len(row); c++ {
			if w := runewidth.StringWidth(escapeMarkdown(row[c])); w > widths[c] {
				widths[c] = w
			}
		}
	}
	for c := range widths {
		if widths[c] < 3 {
			widths[c] = 3
		}
	}

	var b strings.Builder
	if opts.IncludeHeaders {
		writeMarkdownRow(&b, grid.Headers, widths)
		sep := make([]string, cols)
		for c := range sep {
			sep[c] = strings.Repeat("-", widths[c])
		}
		writeMarkdownRow(&b, sep, widths)
	}
	for _, row := range grid.Rows {
		writeMarkdownRow(&b, row, widths)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteString("|")
	for c, width := range widths {
		var v string
		if c < len(cells) {
			v = escapeMarkdown(cells[c])
		}
		b.WriteString(" ")
		b.WriteString(v)
		if pad := width - runewidth.StringWidth(v); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeMarkdown(v string) string {
	v = strings.ReplaceAll(v, "|", `\|`)
	return strings.ReplaceAll(v, "\n", " ")
}

func renderJSONArray(w io.Writer, grid engine.Grid, opts Options) error {
	payload := make([][]string, 0, grid.RowCount()+1)
	if opts.IncludeHeaders && len(grid.Headers) > 0 {
		payload = append(payload, grid.Headers)
	}
	payload = append(payload, grid.Rows...)
	return writeJSONPayload(w, payload, opts.PrettyPrint)
}

// renderJSONObject emits one object per row, keyed by header. Duplicate or
// blank headers get positional suffixes so no key collides.
func renderJSONObject(w io.Writer, grid engine.Grid, opts Options) error {
	keys := objectKeys(grid.Headers)
	payload := make([]map[string]string, 0, grid.RowCount())
	for _, row := range grid.Rows {
		obj := make(map[string]string, len(keys))
		for c, key := range keys {
			var v string
			if c < len(row) {
				v = row[c]
			}
			obj[key] = v
		}
		payload = append(payload, obj)
	}
	return writeJSONPayload(w, payload, opts.PrettyPrint)
}

func objectKeys(headers []string) []string {
	keys := make([]string, len(headers))
	used := make(map[string]bool, len(headers))
	for i, h := range headers {
		key := h
		if key == "" {
			key = fmt.Sprintf("column_%d", i+1)
		}
		base := key
		for n := 2; used[key]; n++ {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

func writeJSONPayload(w io.Writer, payload any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}
