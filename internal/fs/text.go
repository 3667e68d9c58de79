package fs

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// textSampleSize is how much of a file LooksLikeText needs to decide.
const textSampleSize = 4096

// maxControlPercent is the share of control bytes tolerated in non-UTF-8
// text before it counts as binary.
const maxControlPercent = 30

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func hasBOM(sample []byte) bool {
	return bytes.HasPrefix(sample, bomUTF8) ||
		bytes.HasPrefix(sample, bomUTF16LE) ||
		bytes.HasPrefix(sample, bomUTF16BE)
}

// LooksLikeText sniffs the head of a file. BOM-marked content is always
// text; otherwise NUL bytes or too many control bytes mean binary.
func LooksLikeText(sample []byte) bool {
	if len(sample) > textSampleSize {
		sample = sample[:textSampleSize]
	}
	switch {
	case len(sample) == 0, hasBOM(sample):
		return true
	case bytes.IndexByte(sample, 0) >= 0:
		return false
	case utf8.Valid(sample):
		return true
	}

	control := 0
	for _, b := range sample {
		if (b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != 0x1b) || b == 0x7f {
			control++
		}
	}
	return control*100/len(sample) < maxControlPercent
}

// DecodeText converts content to UTF-8. A UTF-8 or UTF-16 BOM selects the
// decoding and is dropped; unmarked content is taken as UTF-8.
func DecodeText(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	if !hasBOM(content) {
		return string(content)
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, content)
	if err != nil {
		return string(content)
	}
	return string(out)
}

// SplitLines decodes content and returns at most limit lines (all when
// limit <= 0). Line endings are stripped, so CRLF and LF read the same.
func SplitLines(content []byte, limit int) []string {
	text := DecodeText(content)
	if text == "" {
		return nil
	}
	var lines []string
	for line := range strings.Lines(text) {
		if limit > 0 && len(lines) == limit {
			break
		}
		line = strings.TrimSuffix(line, "\n")
		lines = append(lines, strings.TrimSuffix(line, "\r"))
	}
	return lines
}
