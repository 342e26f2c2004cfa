package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/celled/celled/internal/export"
)

// ============================================================================
// Export Tests
// ============================================================================

func TestFormats(t *testing.T) {
	svc := newTestService(t)

	infos := svc.Formats()
	keys := make(map[string]bool, len(infos))
	for _, info := range infos {
		keys[info.Key] = true
	}
	for _, want := range []string{"csv", "tsv", "markdown", "json-array", "json-object", "xlsx"} {
		if !keys[want] {
			t.Errorf("expected format %q to be registered", want)
		}
	}
}

func TestExportBytes_CSV(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	data, info, err := svc.ExportBytes(state.SessionID, export.Options{Format: "csv", IncludeHeaders: true})
	if err != nil {
		t.Fatalf("ExportBytes failed: %v", err)
	}
	if info.Key != "csv" {
		t.Errorf("expected format info for csv, got %q", info.Key)
	}
	if info.MIME == "" || info.Extension == "" {
		t.Errorf("expected MIME and extension on format info, got %+v", info)
	}
	text := string(data)
	if !strings.HasPrefix(text, "name,age,city") {
		t.Errorf("expected header line first, got:\n%s", text)
	}
	if !strings.Contains(text, "Bob,25,Paris") {
		t.Errorf("expected data rows, got:\n%s", text)
	}
}

func TestExportBytes_NoHeaders(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	data, _, err := svc.ExportBytes(state.SessionID, export.Options{Format: "csv"})
	if err != nil {
		t.Fatalf("ExportBytes failed: %v", err)
	}
	if strings.Contains(string(data), "name,age,city") {
		t.Errorf("expected headers omitted, got:\n%s", data)
	}
	if !strings.HasPrefix(string(data), "Alice,30,Oslo") {
		t.Errorf("expected first data row first, got:\n%s", data)
	}
}

func TestExportBytes_JSONObject(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	data, _, err := svc.ExportBytes(state.SessionID, export.Options{Format: "json-object"})
	if err != nil {
		t.Fatalf("ExportBytes failed: %v", err)
	}

	var rows []map[string]string
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("export is not valid JSON: %v\n%s", err, data)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(rows))
	}
	if rows[0]["name"] != "Alice" || rows[0]["city"] != "Oslo" {
		t.Errorf("unexpected first object: %+v", rows[0])
	}
}

func TestExportBytes_UnknownFormat(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	_, _, err := svc.ExportBytes(state.SessionID, export.Options{Format: "parquet"})
	if !errors.Is(err, export.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestExportToFile(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	path := filepath.Join(t.TempDir(), "out.md")
	err := svc.ExportToFile(context.Background(), state.SessionID, export.Options{Format: "markdown", IncludeHeaders: true}, path)
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "| name") || !strings.Contains(text, "| Alice") {
		t.Errorf("expected a markdown table, got:\n%s", text)
	}
}

func TestExportPreview(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	preview, err := svc.ExportPreview(state.SessionID, export.Options{Format: "csv", IncludeHeaders: true}, 2)
	if err != nil {
		t.Fatalf("ExportPreview failed: %v", err)
	}
	if !strings.Contains(preview, "Alice") || !strings.Contains(preview, "Bob") {
		t.Errorf("expected first two rows in preview, got:\n%s", preview)
	}
	if strings.Contains(preview, "Carol") {
		t.Errorf("expected third row truncated, got:\n%s", preview)
	}
}

func TestExportPreview_BinaryRejected(t *testing.T) {
	svc := newTestService(t)
	state := openSample(t, svc)

	_, err := svc.ExportPreview(state.SessionID, export.Options{Format: "xlsx"}, 10)
	if !errors.Is(err, export.ErrBinaryPreview) {
		t.Errorf("expected ErrBinaryPreview, got %v", err)
	}
}

func TestExportPreview_DefaultCap(t *testing.T) {
	svc := newTestService(t)

	// Build a grid larger than the configured preview cap.
	var sb strings.Builder
	sb.WriteString("n\n")
	for i := 0; i < 150; i++ {
		sb.WriteString("x\n")
	}
	state, err := svc.OpenFile(context.Background(), writeTestCSV(t, sb.String()))
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	preview, err := svc.ExportPreview(state.SessionID, export.Options{Format: "csv"}, 0)
	if err != nil {
		t.Fatalf("ExportPreview failed: %v", err)
	}
	// Settings default the preview to 100 rows.
	if got := strings.Count(strings.TrimSpace(preview), "\n") + 1; got != 100 {
		t.Errorf("expected 100 preview lines, got %d", got)
	}
}
