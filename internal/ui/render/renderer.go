package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/nav"
	"github.com/kk-code-lab/millr/internal/pane"
	"github.com/kk-code-lab/millr/internal/preview"
	"github.com/kk-code-lab/millr/internal/textutil"
	"github.com/kk-code-lab/millr/internal/ui/surface"
)

const (
	appTitle    = "millr"
	crumbSep    = " › "
	statusSep   = " · "
	dirMarker   = '/'
	errorMarker = "!"
)

// Renderer draws the pane stack and owns the surfaces previews attach to.
// All methods run on the UI loop.
type Renderer struct {
	screen tcell.Screen
	theme  ColorTheme

	columnBuffers map[int]*surface.Buffer
	overlayBuffer *surface.Buffer

	// state of the last frame, used by HitTest
	layout  layoutMetrics
	scroll  map[int]listScroll
	crumbs  []crumbSpan
	overlay bool
}

type listScroll struct {
	key    string
	offset int
}

type crumbSpan struct {
	pane   int
	x0, x1 int
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	theme := GetColorTheme()
	overlay := surface.New(0, 0)
	overlay.SetBackground(tcell.StyleDefault.Background(theme.OverlayBg).Foreground(theme.OverlayFg))
	return &Renderer{
		screen:        screen,
		theme:         theme,
		columnBuffers: make(map[int]*surface.Buffer),
		overlayBuffer: overlay,
		scroll:        make(map[int]listScroll),
	}
}

func (r *Renderer) screenSize() (int, int) {
	if r.screen == nil {
		return 0, 0
	}
	return r.screen.Size()
}

// PaneSurface returns the buffer for a preview pane at index, sized to the
// column that pane occupies on the current screen.
func (r *Renderer) PaneSurface(index int) preview.Surface {
	w, h := r.screenSize()
	width, height := previewGeometry(w, h, index)
	buf, ok := r.columnBuffers[index]
	if !ok {
		buf = surface.New(width, height)
		buf.SetBackground(tcell.StyleDefault.Background(r.theme.PreviewBg).Foreground(r.theme.PreviewFg))
		r.columnBuffers[index] = buf
		return buf
	}
	buf.Resize(width, height)
	return buf
}

// OverlaySurface returns the buffer inside the overlay box.
func (r *Renderer) OverlaySurface() preview.Surface {
	w, h := r.screenSize()
	_, inner := overlayBox(w, h)
	r.overlayBuffer.Resize(inner.Width, inner.Height)
	return r.overlayBuffer
}

// SyncSurfaces resizes every buffer to the current screen and reports
// whether any changed. Callers follow up with Controller.Resized.
func (r *Renderer) SyncSurfaces() bool {
	w, h := r.screenSize()
	changed := false
	for index, buf := range r.columnBuffers {
		if buf.Resize(previewGeometry(w, h, index)) {
			changed = true
		}
	}
	_, inner := overlayBox(w, h)
	if r.overlayBuffer.Resize(inner.Width, inner.Height) {
		changed = true
	}
	return changed
}

func previewGeometry(w, h, index int) (int, int) {
	m := computeLayout(w, h, index, true)
	col, ok := m.previewColumn()
	if !ok {
		return 0, m.bodyHeight
	}
	return col.width, m.bodyHeight
}

// Frame carries app-level state drawn around the pane stack.
type Frame struct {
	Help bool
	// Message replaces the key hints in the status line.
	Message string
}

// Render draws the entire UI for the controller's current stack.
func (r *Renderer) Render(ctrl *nav.Controller, frame Frame) {
	r.screen.Clear()
	w, h := r.screen.Size()

	if frame.Help {
		r.drawHelpOverlay(w, h)
		r.screen.Show()
		return
	}

	stack := ctrl.Stack()
	panes := stack.Panes()
	listings := len(panes)
	hasPreview := false
	if n := len(panes); n > 0 && !panes[n-1].IsListing() {
		listings--
		hasPreview = true
	}
	r.layout = computeLayout(w, h, listings, hasPreview)
	summary := stack.Summary()

	r.drawHeader(summary, w)
	for _, col := range r.layout.columns {
		p := panes[col.pane]
		if col.preview {
			r.drawPreviewColumn(p, col)
		} else {
			r.drawListing(p, col, col.pane == ctrl.Focus())
		}
		if sepX := col.x + col.width; !col.preview && sepX < w {
			r.drawSeparator(sepX)
		}
	}
	r.pruneScroll(len(panes))

	session, item := ctrl.Overlay()
	r.overlay = session != nil
	if session != nil {
		r.drawOverlay(session, item, w, h)
	}
	r.drawStatusLine(summary, frame.Message, w, h)
	r.screen.Show()
}

// drawHeader renders the top bar with the title and the breadcrumb trail.
// Each crumb maps to the pane it names.
func (r *Renderer) drawHeader(summary pane.Summary, w int) {
	headerStyle := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	r.crumbs = r.crumbs[:0]

	endX := r.drawTextLine(0, 0, w, appTitle, headerStyle.Bold(true))
	if endX < w {
		r.screen.SetContent(endX, 0, ' ', nil, headerStyle)
		endX++
	}

	crumbs := make([]string, len(summary.Breadcrumbs))
	for i, name := range summary.Breadcrumbs {
		crumbs[i] = textutil.SanitizeTerminalText(name)
	}

	// Drop leading crumbs until the trail fits; the deepest stays visible.
	first := 0
	for first < len(crumbs)-1 && r.crumbWidth(crumbs[first:]) > w-endX {
		first++
	}
	if first > 0 && endX < w {
		endX = r.drawTextLine(endX, 0, w-endX, "…"+crumbSep, headerStyle)
	}

	for i := first; i < len(crumbs); i++ {
		if i > first && endX < w {
			endX = r.drawTextLine(endX, 0, w-endX, crumbSep, headerStyle)
		}
		if endX >= w {
			break
		}
		style := headerStyle
		if i == len(crumbs)-1 {
			style = style.Bold(true)
		}
		text := textutil.Truncate(crumbs[i], w-endX)
		start := endX
		endX = r.drawTextLine(endX, 0, w-endX, text, style)
		r.crumbs = append(r.crumbs, crumbSpan{pane: i, x0: start, x1: endX})
	}
	r.fillRange(endX, w, 0, headerStyle)
}

func (r *Renderer) crumbWidth(crumbs []string) int {
	width := 0
	for i, c := range crumbs {
		if i > 0 {
			width += textutil.DisplayWidth(crumbSep)
		}
		width += textutil.DisplayWidth(c)
	}
	return width
}

func (r *Renderer) scrollOffset(p *pane.Pane, rows int) int {
	state := r.scroll[p.Index()]
	if state.key != p.Item().Key() {
		state = listScroll{key: p.Item().Key()}
	}
	cursor := p.Cursor()
	if cursor >= 0 {
		if cursor < state.offset {
			state.offset = cursor
		}
		if rows > 0 && cursor >= state.offset+rows {
			state.offset = cursor - rows + 1
		}
	}
	if maxOffset := p.Len() - rows; state.offset > maxOffset {
		state.offset = maxOffset
	}
	if state.offset < 0 {
		state.offset = 0
	}
	r.scroll[p.Index()] = state
	return state.offset
}

func (r *Renderer) pruneScroll(n int) {
	for index := range r.scroll {
		if index >= n {
			delete(r.scroll, index)
		}
	}
}

// drawListing renders one listing column with its selection.
func (r *Renderer) drawListing(p *pane.Pane, col column, focused bool) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.Foreground)
	bodyY, rows := r.layout.bodyY, r.layout.bodyHeight

	if err := p.ListErr(); err != nil {
		errStyle := baseStyle.Foreground(r.theme.ErrorFg)
		r.drawTextLine(col.x, bodyY, col.width, textutil.Truncate(" "+errorMarker+" cannot read directory", col.width), errStyle)
		return
	}
	if p.Len() == 0 && rows > 0 {
		r.drawTextLine(col.x, bodyY, col.width, textutil.Truncate(" (empty)", col.width), baseStyle.Dim(true))
		return
	}

	offset := r.scrollOffset(p, rows)
	for row := 0; row < rows; row++ {
		index := offset + row
		item, ok := p.Child(index)
		if !ok {
			break
		}
		y := bodyY + row

		style := baseStyle.Foreground(r.theme.FileFg)
		if item.IsDir() {
			style = baseStyle.Foreground(r.theme.DirectoryFg)
		}
		if fs.IsHiddenItem(item) {
			style = style.Foreground(r.theme.HiddenFg)
		}
		if p.IsSelected(index) {
			bg := r.theme.SelectionBg
			if !focused {
				bg = r.theme.InactiveSelBg
			}
			style = style.Background(bg).Foreground(r.theme.SelectionFg)
		}

		marker := ' '
		if item.IsDir() {
			marker = dirMarker
		}
		name := textutil.SanitizeTerminalText(item.Name())
		text := " " + textutil.Truncate(name, col.width-3) + " "
		endX := r.drawTextLine(col.x, y, col.width-1, text, style)
		r.fillRange(endX, col.x+col.width-1, y, style)
		r.screen.SetContent(col.x+col.width-1, y, marker, nil, style)
	}
}

func (r *Renderer) drawSeparator(x int) {
	style := tcell.StyleDefault.Foreground(r.theme.SeparatorFg)
	for y := r.layout.bodyY; y < r.layout.bodyY+r.layout.bodyHeight; y++ {
		r.screen.SetContent(x, y, '│', nil, style)
	}
}

// drawPreviewColumn blits the attached renderer's surface, or the file's
// details while no renderer is attached.
func (r *Renderer) drawPreviewColumn(p *pane.Pane, col column) {
	if s := p.Session(); s != nil && s.State() == preview.StateAttached {
		if buf, ok := r.columnBuffers[p.Index()]; ok {
			buf.Blit(r.screen, col.x, r.layout.bodyY, col.width, r.layout.bodyHeight)
			return
		}
	}

	style := tcell.StyleDefault.Background(r.theme.PreviewBg).Foreground(r.theme.PreviewFg)
	lines := p.Details()
	if s := p.Session(); s != nil && s.State() == preview.StateLoading {
		lines = append(lines, "", "Loading preview…")
	}
	r.drawLines(lines, col.x+1, r.layout.bodyY, col.width-1, r.layout.bodyHeight, style)
}

func (r *Renderer) drawLines(lines []string, x, y, width, height int, style tcell.Style) {
	for i, line := range lines {
		if i >= height {
			break
		}
		text := textutil.Truncate(textutil.SanitizeTerminalText(line), width)
		if i == 0 {
			r.drawTextLine(x, y+i, width, text, style.Bold(true))
			continue
		}
		r.drawTextLine(x, y+i, width, text, style)
	}
}

// drawOverlay renders the bordered overlay box over the columns.
func (r *Renderer) drawOverlay(session *preview.Session, item fs.Item, w, h int) {
	box, inner := overlayBox(w, h)
	style := tcell.StyleDefault.Background(r.theme.OverlayBg).Foreground(r.theme.OverlayFg)
	border := style.Foreground(r.theme.BorderFg)

	for y := box.Y; y < box.Y+box.Height; y++ {
		r.fillRange(box.X, box.X+box.Width, y, style)
	}
	right, bottom := box.X+box.Width-1, box.Y+box.Height-1
	for x := box.X + 1; x < right; x++ {
		r.screen.SetContent(x, box.Y, '─', nil, border)
		r.screen.SetContent(x, bottom, '─', nil, border)
	}
	for y := box.Y + 1; y < bottom; y++ {
		r.screen.SetContent(box.X, y, '│', nil, border)
		r.screen.SetContent(right, y, '│', nil, border)
	}
	r.screen.SetContent(box.X, box.Y, '┌', nil, border)
	r.screen.SetContent(right, box.Y, '┐', nil, border)
	r.screen.SetContent(box.X, bottom, '└', nil, border)
	r.screen.SetContent(right, bottom, '┘', nil, border)

	title := " " + textutil.SanitizeTerminalText(item.Name()) + " "
	r.drawTextLine(box.X+2, box.Y, box.Width-4, textutil.Truncate(title, box.Width-4), border.Bold(true))

	switch session.State() {
	case preview.StateAttached:
		r.overlayBuffer.Blit(r.screen, inner.X, inner.Y, inner.Width, inner.Height)
	case preview.StateFailed:
		r.drawLines([]string{"", fmt.Sprintf(" No preview available (%s)", item.Ext())}, inner.X, inner.Y, inner.Width, inner.Height, style)
	default:
		r.drawLines([]string{"", " Loading preview…"}, inner.X, inner.Y, inner.Width, inner.Height, style)
	}
}

// drawStatusLine renders "title · status" on the left and a message or key
// hints on the right when they fit.
func (r *Renderer) drawStatusLine(summary pane.Summary, message string, w, h int) {
	if h <= headerHeight {
		return
	}
	style := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	y := h - 1

	left := textutil.SanitizeTerminalText(formatStatusText(summary))
	endX := r.drawTextLine(0, y, w, textutil.Truncate(left, w), style)
	r.fillRange(endX, w, y, style)

	if message != "" {
		text := " " + textutil.SanitizeTerminalText(message) + " "
		text = textutil.Truncate(text, w-endX-2)
		width := textutil.DisplayWidth(text)
		r.drawTextLine(w-width, y, width, text, style.Foreground(r.theme.ErrorFg))
		return
	}

	hints := buildFooterHelpText(r.overlay)
	if hintWidth := textutil.DisplayWidth(hints); endX+hintWidth+2 <= w {
		r.drawTextLine(w-hintWidth, y, hintWidth, hints, style.Dim(true))
	}
}
