package csvio

// streaming.go assembles the reader pipeline used by ReadFile: decode to
// UTF-8, strip a leading BOM, repair ill-formed sequences, and count bytes
// for progress reporting. Every stage is an io.Reader wrapper, so files never
// load twice.

import (
	"bufio"
	"io"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// CountingReader wraps an io.Reader and tracks bytes consumed. The zero Total
// means the size is unknown and Progress reports 0.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64
}

// NewCountingReader wraps r with byte accounting against an optional total.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.BytesRead += int64(n)
	return n, err
}

// Progress returns the consumed fraction as a 0-100 percentage.
func (c *CountingReader) Progress() int {
	if c.Total <= 0 {
		return 0
	}
	p := c.BytesRead * 100 / c.Total
	if p > 100 {
		p = 100
	}
	return int(p)
}

// skipBOM consumes a leading UTF-8 byte order mark, if present, and returns
// a reader positioned after it. The input must already be UTF-8.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(3)
	if err == nil && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		br.Discard(3)
	}
	return br
}

// decodeReader converts raw file bytes in the named encoding to clean UTF-8.
// UTF-16 decoders strip their own BOM; for the UTF-8 path the BOM is skipped
// here and ill-formed sequences are replaced with U+FFFD so a damaged file
// still opens.
func decodeReader(r io.Reader, encodingName string) (io.Reader, error) {
	enc, err := encodingFor(encodingName)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		return transform.NewReader(r, enc.NewDecoder()), nil
	}
	return transform.NewReader(skipBOM(r), runes.ReplaceIllFormed()), nil
}
