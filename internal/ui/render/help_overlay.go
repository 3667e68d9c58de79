package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/millr/internal/textutil"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

var helpSections = []helpOverlaySection{
	{
		title: "Navigation",
		entries: []helpOverlayEntry{
			{keys: "↑/↓", desc: "Move selection"},
			{keys: "Shift+↑/↓", desc: "Extend selection"},
			{keys: "→", desc: "Enter directory / next file"},
			{keys: "←", desc: "Back to the previous column"},
			{keys: "Home/End", desc: "First / last item"},
			{keys: "~", desc: "Go home"},
		},
	},
	{
		title: "Preview & Open",
		entries: []helpOverlayEntry{
			{keys: "Space", desc: "Toggle overlay preview"},
			{keys: "Esc", desc: "Close overlay preview"},
			{keys: "↵", desc: "Open selection with default app"},
		},
	},
	{
		title: "Mouse",
		entries: []helpOverlayEntry{
			{keys: "Click", desc: "Select item"},
			{keys: "Ctrl+Click", desc: "Toggle item"},
			{keys: "Shift+Click", desc: "Select range"},
			{keys: "Double-click", desc: "Open item"},
			{keys: "Breadcrumb", desc: "Collapse to that column"},
		},
	},
	{
		title: "Exit",
		entries: []helpOverlayEntry{
			{keys: "q", desc: "Quit"},
			{keys: "Ctrl+C", desc: "Quit immediately"},
			{keys: "?", desc: "Close this help"},
		},
	},
}

func buildHelpOverlayLines() []string {
	lines := make([]string, 0, 32)
	for i, section := range helpSections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, formatHelpOverlayEntry(entry))
		}
	}
	return lines
}

func formatHelpOverlayEntry(entry helpOverlayEntry) string {
	key := textutil.SanitizeTerminalText(entry.keys)
	desc := textutil.SanitizeTerminalText(entry.desc)
	return fmt.Sprintf("  %-14s %s", key, desc)
}

func (r *Renderer) drawHelpOverlay(w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	for y := 0; y < h; y++ {
		r.fillRange(0, w, y, baseStyle)
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Bold(true)
	titleStart := 0
	if titleWidth := textutil.DisplayWidth(title); w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	row := 2
	for _, line := range buildHelpOverlayLines() {
		if row >= h-1 {
			break
		}
		text := textutil.Truncate(strings.TrimRight(line, " "), w-4)
		r.drawTextLine(2, row, w-4, text, baseStyle)
		row++
	}

	if h > 0 {
		footer := textutil.Truncate("? toggle · Esc/q close", w)
		r.drawTextLine(0, h-1, w, footer, headerStyle)
	}
}
