package csvio

// writer.go implements atomic saves. The grid is written to a temp file in
// the target directory, synced, then renamed over the destination, so a
// crash mid-save never leaves a half-written file. An optional .bak keeps
// the previous version.

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// WriteOptions controls the output dialect. Zero values mean comma-separated
// UTF-8 with LF line endings and no backup.
type WriteOptions struct {
	Delimiter rune
	Encoding  string
	UseCRLF   bool

	// Backup renames the existing file to <path>.bak before the new
	// version lands.
	Backup bool
}

// WriteFile saves headers and rows to path atomically.
func WriteFile(path string, headers []string, rows [][]string, opts WriteOptions) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := writeRecords(tmp, headers, rows, opts); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Carry the destination's permissions; CreateTemp defaults to 0600.
	if info, err := os.Stat(path); err == nil {
		os.Chmod(tmp.Name(), info.Mode())
		if opts.Backup {
			if err := os.Rename(path, path+".bak"); err != nil {
				return fmt.Errorf("create backup: %w", err)
			}
		}
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	committed = true
	return nil
}

// AppendRows appends data rows to an existing file in the same dialect,
// without rewriting it. A missing final newline in the existing file is
// repaired first so the appended rows stay separate records.
func AppendRows(path string, rows [][]string, opts WriteOptions) error {
	if len(rows) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := ensureTrailingNewline(f); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	if err := writeRecords(f, nil, rows, opts); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return nil
}

// ensureTrailingNewline positions f at the end, writing a newline first when
// the last existing byte is not one.
func ensureTrailingNewline(f *os.File) error {
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if end == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, end-1); err != nil {
		return err
	}
	if last[0] != '\n' {
		if _, err := f.Write([]byte{'\n'}); err != nil {
			return err
		}
	}
	return nil
}

// writeRecords encodes the header and rows onto w in the requested dialect.
// Runes the target encoding cannot represent degrade to its substitute
// character instead of failing the save.
func writeRecords(w io.Writer, headers []string, rows [][]string, opts WriteOptions) error {
	name := opts.Encoding
	if name == "" {
		name = EncodingUTF8
	}
	enc, err := encodingFor(name)
	if err != nil {
		return err
	}

	out := w
	var tw *transform.Writer
	if enc != nil {
		tw = transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
		out = tw
	}

	cw := csv.NewWriter(out)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}
	cw.UseCRLF = opts.UseCRLF

	if headers != nil {
		if err := cw.Write(headers); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
	}
	return nil
}
