package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const DefaultTabWidth = 4

const ellipsis = "…"

// ExpandTabs replaces tab characters with spaces respecting terminal column width.
func ExpandTabs(text string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(text, '\t') {
		return text
	}

	var builder strings.Builder
	column := 0
	for _, ru := range text {
		if ru == '\t' {
			spaces := tabWidth - (column % tabWidth)
			for i := 0; i < spaces; i++ {
				builder.WriteByte(' ')
			}
			column += spaces
			continue
		}
		builder.WriteRune(ru)
		width := runewidth.RuneWidth(ru)
		if width < 1 {
			width = 1
		}
		column += width
	}
	return builder.String()
}

// DisplayWidth reports the printable width of text in terminal cells,
// measuring whole grapheme clusters.
func DisplayWidth(text string) int {
	return uniseg.StringWidth(text)
}

// Truncate shortens text to maxWidth cells, ending with an ellipsis when
// anything was cut.
func Truncate(text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if DisplayWidth(text) <= maxWidth {
		return text
	}
	if maxWidth == 1 {
		return ellipsis
	}
	return clip(text, maxWidth-1) + ellipsis
}

// TruncateLeft keeps the end of text, prefixing an ellipsis when cut.
// Useful for paths where the last segment matters most.
func TruncateLeft(text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if DisplayWidth(text) <= maxWidth {
		return text
	}
	if maxWidth == 1 {
		return ellipsis
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	available := maxWidth - 1
	width := 0
	start := len(clusters)
	for start > 0 {
		w := uniseg.StringWidth(clusters[start-1])
		if width+w > available {
			break
		}
		width += w
		start--
	}
	return ellipsis + strings.Join(clusters[start:], "")
}

// PadRight pads text with spaces to exactly width cells, truncating first
// if needed.
func PadRight(text string, width int) string {
	text = Truncate(text, width)
	if pad := width - DisplayWidth(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return text
}

func clip(text string, maxWidth int) string {
	var builder strings.Builder
	width := 0
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		w := gr.Width()
		if width+w > maxWidth {
			break
		}
		builder.WriteString(gr.Str())
		width += w
	}
	return builder.String()
}
