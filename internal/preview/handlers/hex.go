package handlers

import (
	"fmt"
	"io"
	"strings"
)

const (
	hexBytesPerLine = 16
	hexMaxBytes     = 4096
)

// Hex renders the first bytes of a file as a classic hex dump.
type Hex struct {
	lineView
}

// NewHex returns a hex dump renderer.
func NewHex() *Hex { return &Hex{} }

func (h *Hex) InitializeWithStream(stream io.ReadSeeker) error {
	size, err := streamSize(stream)
	if err != nil {
		return fmt.Errorf("stat stream: %w", err)
	}
	content, err := io.ReadAll(io.LimitReader(stream, hexMaxBytes))
	if err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	h.setLines(hexLines(content, size))
	return nil
}

func hexLines(content []byte, total int64) []string {
	if len(content) > hexMaxBytes {
		content = content[:hexMaxBytes]
	}
	if len(content) == 0 {
		return []string{"(empty file)"}
	}

	lines := make([]string, 0, len(content)/hexBytesPerLine+2)
	for offset := 0; offset < len(content); offset += hexBytesPerLine {
		chunk := content[offset:min(offset+hexBytesPerLine, len(content))]
		lines = append(lines, hexLine(offset, chunk))
	}
	if rest := total - int64(len(content)); rest > 0 {
		lines = append(lines, fmt.Sprintf("… (%d bytes not shown)", rest))
	}
	return lines
}

// hexLine formats "OFFSET  HH HH ... HH  |ascii|" with a gap after byte 8.
func hexLine(offset int, chunk []byte) string {
	var b strings.Builder
	b.Grow(80)
	fmt.Fprintf(&b, "%08X  ", offset)
	for i := 0; i < hexBytesPerLine; i++ {
		if i < len(chunk) {
			fmt.Fprintf(&b, "%02X ", chunk[i])
		} else {
			b.WriteString("   ")
		}
		if i == 7 {
			b.WriteByte(' ')
		}
	}
	b.WriteString(" |")
	for _, c := range chunk {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	b.WriteString(strings.Repeat(" ", hexBytesPerLine-len(chunk)))
	b.WriteByte('|')
	return b.String()
}
