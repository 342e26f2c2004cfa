package csvio

// detect.go implements delimiter and character-set detection for files whose
// dialect the caller did not pin down. Detection runs over a bounded sample
// from the start of the file; both detectors are best-effort and always
// return a usable answer.

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// EncodingUTF8 is the canonical name for UTF-8, the default and the internal
// representation all cell data is normalized to.
const EncodingUTF8 = "UTF-8"

// delimiterSampleSize bounds how much of the (decoded) sample the delimiter
// counter inspects.
const delimiterSampleSize = 1024

// delimiterCandidates are tried in priority order; ties go to the earlier one.
var delimiterCandidates = []rune{',', '\t', ';', '|'}

// Detection describes the dialect inferred from a file sample.
type Detection struct {
	Delimiter  rune   `json:"delimiter"`
	Encoding   string `json:"encoding"`
	Confidence int    `json:"confidence"`
	HasBOM     bool   `json:"hasBom"`
}

// DetectDelimiter counts candidate separators in the first KiB of the sample,
// ignoring characters inside double-quoted fields, and returns the most
// frequent one. A sample with no separators at all detects as comma.
func DetectDelimiter(sample []byte) rune {
	if len(sample) > delimiterSampleSize {
		sample = sample[:delimiterSampleSize]
	}

	counts := make(map[rune]int, len(delimiterCandidates))
	inQuotes := false
	for _, b := range sample {
		if b == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		for _, d := range delimiterCandidates {
			if rune(b) == d {
				counts[d]++
				break
			}
		}
	}

	best := delimiterCandidates[0]
	for _, d := range delimiterCandidates[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

// DetectEncoding names the character set of the sample along with a 0-100
// confidence. A UTF-8 BOM or byte-valid UTF-8 short-circuits the statistical
// detector; an undetectable sample falls back to windows-1252, which decodes
// any byte sequence.
func DetectEncoding(sample []byte) (string, int) {
	switch {
	case bytes.HasPrefix(sample, []byte{0xEF, 0xBB, 0xBF}):
		return EncodingUTF8, 100
	case bytes.HasPrefix(sample, []byte{0xFF, 0xFE}):
		return "UTF-16LE", 100
	case bytes.HasPrefix(sample, []byte{0xFE, 0xFF}):
		return "UTF-16BE", 100
	}
	if utf8.Valid(sample) {
		return EncodingUTF8, 100
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return "windows-1252", 0
	}
	name, err := canonicalEncoding(result.Charset)
	if err != nil {
		return "windows-1252", 0
	}
	return name, result.Confidence
}

// Detect combines encoding and delimiter detection over one sample. The
// delimiter is counted on the decoded text so that multi-byte encodings do
// not skew the tally.
func Detect(sample []byte) Detection {
	name, confidence := DetectEncoding(sample)

	decoded := sample
	if enc, err := encodingFor(name); err == nil && enc != nil {
		if out, err := enc.NewDecoder().Bytes(sample); err == nil {
			decoded = out
		}
	}
	decoded = bytes.TrimPrefix(decoded, []byte{0xEF, 0xBB, 0xBF})

	return Detection{
		Delimiter:  DetectDelimiter(decoded),
		Encoding:   name,
		Confidence: confidence,
		HasBOM:     hasBOM(sample),
	}
}

func hasBOM(sample []byte) bool {
	return bytes.HasPrefix(sample, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(sample, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(sample, []byte{0xFE, 0xFF})
}

// canonicalEncoding normalizes an encoding label to the name this package
// reports and accepts.
func canonicalEncoding(name string) (string, error) {
	switch normalizeEncodingName(name) {
	case "utf8", "ascii", "usascii":
		return EncodingUTF8, nil
	case "utf16le":
		return "UTF-16LE", nil
	case "utf16be":
		return "UTF-16BE", nil
	case "shiftjis", "sjis", "cp932":
		return "Shift_JIS", nil
	case "eucjp":
		return "EUC-JP", nil
	case "gb18030", "gbk", "gb2312":
		return "GB18030", nil
	case "big5":
		return "Big5", nil
	case "euckr":
		return "EUC-KR", nil
	case "iso88591", "latin1":
		return "ISO-8859-1", nil
	case "windows1252", "cp1252":
		return "windows-1252", nil
	default:
		return "", &UnknownEncodingError{Name: name}
	}
}

// encodingFor resolves a canonical (or loosely spelled) encoding name to its
// x/text implementation. UTF-8 resolves to nil, meaning no transform is
// needed.
func encodingFor(name string) (encoding.Encoding, error) {
	canonical, err := canonicalEncoding(name)
	if err != nil {
		return nil, err
	}
	switch canonical {
	case EncodingUTF8:
		return nil, nil
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "Shift_JIS":
		return japanese.ShiftJIS, nil
	case "EUC-JP":
		return japanese.EUCJP, nil
	case "GB18030":
		return simplifiedchinese.GB18030, nil
	case "Big5":
		return traditionalchinese.Big5, nil
	case "EUC-KR":
		return korean.EUCKR, nil
	case "ISO-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252":
		return charmap.Windows1252, nil
	default:
		return nil, &UnknownEncodingError{Name: name}
	}
}

func normalizeEncodingName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r == '-' || r == '_' || r == ' ':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
