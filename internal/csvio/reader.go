package csvio

// reader.go implements dialect-aware CSV/TSV loading. ReadFile samples the
// file head for detection, then streams the whole file through the decode
// pipeline exactly once. Rows are returned as parsed; width normalization is
// the grid's job, not the reader's.

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// detectionSampleSize bounds how many leading bytes feed the dialect
// detectors.
const detectionSampleSize = 64 * 1024

// progressInterval is the row stride between progress callbacks.
const progressInterval = 512

// ReadOptions pins parts of the dialect the caller already knows. Zero
// values mean detect.
type ReadOptions struct {
	// Delimiter forces the field separator; 0 means detect (a .tsv
	// extension detects as tab).
	Delimiter rune

	// Encoding forces the character set by canonical name; empty means
	// detect.
	Encoding string

	// MaxRows caps how many data rows are kept. Rows past the cap are
	// still counted in TotalRows. 0 keeps everything.
	MaxRows int

	// Progress, when set, receives byte counts as the file streams.
	Progress func(bytesRead, totalBytes int64)
}

// ReadResult is a parsed file plus the dialect it was read with.
type ReadResult struct {
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	Delimiter rune       `json:"delimiter"`
	Encoding  string     `json:"encoding"`
	HasBOM    bool       `json:"hasBom"`
	TotalRows int        `json:"totalRows"`
}

// ValidatePath checks that path names an existing regular file with a .csv
// or .tsv extension.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return nil
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedExtension)
	}
}

// ReadFile loads a CSV/TSV file, detecting delimiter and encoding unless the
// options pin them. The first record becomes the header row; every following
// record is a data row.
func ReadFile(path string, opts ReadOptions) (*ReadResult, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	sample := make([]byte, detectionSampleSize)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("sample %s: %w", path, err)
	}
	sample = sample[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	det := Detect(sample)
	encName := opts.Encoding
	if encName == "" {
		encName = det.Encoding
	}
	delim := opts.Delimiter
	if delim == 0 {
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			delim = '\t'
		} else {
			delim = det.Delimiter
		}
	}

	var src io.Reader = f
	var counting *CountingReader
	if opts.Progress != nil {
		counting = NewCountingReader(f, info.Size())
		src = counting
	}
	decoded, err := decodeReader(src, encName)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	cr := newRecordReader(decoded, delim)
	result := &ReadResult{Delimiter: delim, Encoding: encName, HasBOM: det.HasBOM}
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if first {
			result.Headers = record
			first = false
			continue
		}
		result.TotalRows++
		if opts.MaxRows <= 0 || len(result.Rows) < opts.MaxRows {
			result.Rows = append(result.Rows, record)
		}
		if counting != nil && result.TotalRows%progressInterval == 0 {
			opts.Progress(counting.BytesRead, counting.Total)
		}
	}
	if counting != nil {
		opts.Progress(counting.BytesRead, counting.Total)
	}
	return result, nil
}

// ParseRecords parses delimiter-separated records from r without any header
// interpretation. The input must already be UTF-8.
func ParseRecords(r io.Reader, delimiter rune) ([][]string, error) {
	records, err := newRecordReader(r, delimiter).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return records, nil
}

// newRecordReader builds the csv.Reader all parsing paths share: ragged rows
// allowed, lazy quoting for files written by other tools.
func newRecordReader(r io.Reader, delimiter rune) *csv.Reader {
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}
