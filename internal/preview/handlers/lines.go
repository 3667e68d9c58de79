// Package handlers contains the built-in preview renderers and the
// external-command renderer configured by the user.
package handlers

import (
	"errors"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/millr/internal/preview"
	"github.com/kk-code-lab/millr/internal/textutil"
)

var errNoWindow = errors.New("renderer has no window")

// lineView draws a list of lines into the attached canvas. Renderers embed
// it and supply either fixed lines or a layout function that depends on
// the available width.
type lineView struct {
	mu     sync.Mutex
	canvas preview.Canvas
	rect   preview.Rect
	lines  []string
	layout func(width int) []string
	style  tcell.Style
}

func (v *lineView) setLines(lines []string) {
	v.mu.Lock()
	v.lines = lines
	v.mu.Unlock()
}

func (v *lineView) SetWindow(canvas preview.Canvas, rect preview.Rect) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.canvas = canvas
	v.rect = rect
	return nil
}

func (v *lineView) SetRect(rect preview.Rect) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rect = rect
	return v.drawLocked()
}

func (v *lineView) DoPreview() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.drawLocked()
}

func (v *lineView) Unload() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.canvas = nil
	v.lines = nil
	v.layout = nil
	return nil
}

func (v *lineView) drawLocked() error {
	if v.canvas == nil {
		return errNoWindow
	}
	lines := v.lines
	if v.layout != nil {
		lines = v.layout(v.rect.Width)
	}

	v.canvas.Clear()
	for i := 0; i < v.rect.Height && i < len(lines); i++ {
		y := v.rect.Y + i
		line := textutil.SanitizeTerminalText(textutil.ExpandTabs(lines[i], textutil.DefaultTabWidth))
		v.canvas.DrawText(v.rect.X, y, v.rect.Width, line, v.style)
	}
	return nil
}

// Lines returns what the renderer would draw at the given width. Used by
// tests and the overlay title.
func (v *lineView) Lines(width int) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.layout != nil {
		return v.layout(width)
	}
	return append([]string(nil), v.lines...)
}
