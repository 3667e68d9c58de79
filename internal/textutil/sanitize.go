package textutil

import (
	"fmt"
	"strings"
	"unicode"
)

// formatNames abbreviates the invisible format runes that can reorder or
// hide text in file names.
var formatNames = map[rune]string{
	0x00AD: "SHY",
	0x061C: "ALM",
	0x180E: "MVS",
	0x200B: "ZWSP",
	0x200C: "ZWNJ",
	0x200D: "ZWJ",
	0x200E: "LRM",
	0x200F: "RLM",
	0x2028: "LSEP",
	0x2029: "PSEP",
	0x202A: "LRE",
	0x202B: "RLE",
	0x202C: "PDF",
	0x202D: "LRO",
	0x202E: "RLO",
	0x2060: "WJ",
	0x2066: "LRI",
	0x2067: "RLI",
	0x2068: "FSI",
	0x2069: "PDI",
	0xFEFF: "BOM",
}

// formatLabel returns the visible stand-in for an invisible format rune.
func formatLabel(r rune) (string, bool) {
	if name, ok := formatNames[r]; ok {
		return "⟪" + name + "⟫", true
	}
	if unicode.In(r, unicode.Cf, unicode.Zl, unicode.Zp) {
		return fmt.Sprintf("⟪U+%04X⟫", r), true
	}
	return "", false
}

func unsafeRune(r rune) bool {
	if r == '\t' {
		return false
	}
	if r < 0x20 || r == 0x7f {
		return true
	}
	_, ok := formatLabel(r)
	return ok
}

// SanitizeTerminalText makes text safe to draw: control characters become
// '?', line breaks and tabs become spaces, and invisible format runes are
// labelled so they cannot smuggle escape sequences or reorder a name.
func SanitizeTerminalText(text string) string {
	if strings.IndexFunc(text, unsafeRune) < 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if label, ok := formatLabel(r); ok {
			b.WriteString(label)
			continue
		}
		switch {
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
