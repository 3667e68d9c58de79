package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/logging"
)

const maxMarkdownBytes = 256 * 1024

// Markdown renders markdown through glamour, re-wrapping on resize.
// The notty style is used so no terminal queries leak into tcell input.
type Markdown struct {
	lineView
	source string
	cache  map[int][]string
}

// NewMarkdown returns a markdown renderer.
func NewMarkdown() *Markdown {
	m := &Markdown{cache: make(map[int][]string)}
	m.layout = m.render
	return m
}

func (m *Markdown) InitializeWithStream(stream io.ReadSeeker) error {
	content, err := io.ReadAll(io.LimitReader(stream, maxMarkdownBytes))
	if err != nil {
		return fmt.Errorf("read markdown: %w", err)
	}
	m.mu.Lock()
	m.source = fs.DecodeText(content)
	m.mu.Unlock()
	return nil
}

// render is called with the lineView lock held.
func (m *Markdown) render(width int) []string {
	if width < 1 {
		width = 1
	}
	if lines, ok := m.cache[width]; ok {
		return lines
	}

	lines, err := renderMarkdown(m.source, width)
	if err != nil {
		logging.Warn("markdown: render failed, showing source", logging.Err(err))
		lines = fs.SplitLines([]byte(m.source), maxTextLines)
	}
	m.cache[width] = lines
	return lines
}

func renderMarkdown(source string, width int) ([]string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	out, err := r.Render(source)
	if err != nil {
		return nil, err
	}
	out = strings.Trim(ansi.Strip(out), "\n")
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return lines, nil
}

func (m *Markdown) Unload() error {
	m.mu.Lock()
	m.source = ""
	m.cache = make(map[int][]string)
	m.mu.Unlock()
	return m.lineView.Unload()
}
