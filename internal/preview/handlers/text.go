package handlers

import (
	"fmt"
	"io"

	"github.com/kk-code-lab/millr/internal/fs"
)

const (
	maxTextBytes = 256 * 1024
	maxTextLines = 2000
)

// Text renders plain text. Content that does not look like text is shown
// as a hex dump instead.
type Text struct {
	lineView
}

// NewText returns a text renderer.
func NewText() *Text { return &Text{} }

func (t *Text) InitializeWithStream(stream io.ReadSeeker) error {
	content, err := io.ReadAll(io.LimitReader(stream, maxTextBytes))
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}

	if !fs.LooksLikeText(content) {
		size, _ := streamSize(stream)
		t.setLines(hexLines(content, size))
		return nil
	}

	lines := fs.SplitLines(content, maxTextLines+1)
	if len(lines) > maxTextLines {
		lines = append(lines[:maxTextLines], "… (truncated)")
	}
	t.setLines(lines)
	return nil
}

func streamSize(stream io.Seeker) (int64, error) {
	cur, err := stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	_, err = stream.Seek(cur, io.SeekStart)
	return end, err
}
