// Package surface provides off-screen cell buffers that preview renderers
// draw into. The UI loop blits each buffer into the screen region of the
// column or overlay that owns it.
package surface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// ErrBusy is returned by Bind when another owner holds the buffer.
var ErrBusy = errors.New("surface already bound")

type cell struct {
	main  rune // 0 marks the trailing half of a wide cell
	comb  []rune
	style tcell.Style
}

// Buffer is a fixed-size grid of cells safe for concurrent use.
// At most one owner is bound at a time.
type Buffer struct {
	mu    sync.Mutex
	w, h  int
	cells []cell
	owner string
	bg    tcell.Style
	gen   uint64
}

// New allocates a w×h buffer filled with blanks.
func New(w, h int) *Buffer {
	b := &Buffer{bg: tcell.StyleDefault}
	b.resizeLocked(w, h)
	return b
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.w, b.h
}

// Resize changes the dimensions and reports whether they changed.
// Contents are cleared on change.
func (b *Buffer) Resize(w, h int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w == b.w && h == b.h {
		return false
	}
	b.resizeLocked(w, h)
	return true
}

func (b *Buffer) resizeLocked(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	b.w, b.h = w, h
	b.cells = make([]cell, w*h)
	b.fillLocked()
}

func (b *Buffer) fillLocked() {
	for i := range b.cells {
		b.cells[i] = cell{main: ' ', style: b.bg}
	}
	b.gen++
}

// SetBackground sets the style used by Clear.
func (b *Buffer) SetBackground(style tcell.Style) {
	b.mu.Lock()
	b.bg = style
	b.mu.Unlock()
}

// Bind claims the buffer for owner. Rebinding the current owner is allowed.
func (b *Buffer) Bind(owner string) error {
	if owner == "" {
		return fmt.Errorf("bind surface: empty owner")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.owner != "" && b.owner != owner {
		return fmt.Errorf("%w by %s", ErrBusy, b.owner)
	}
	b.owner = owner
	return nil
}

// Release unbinds owner and clears the buffer. It reports false when
// owner did not hold the buffer, leaving it untouched.
func (b *Buffer) Release(owner string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if owner == "" || b.owner != owner {
		return false
	}
	b.owner = ""
	b.fillLocked()
	return true
}

// Owner returns the bound owner or "".
func (b *Buffer) Owner() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner
}

// Generation increments on every mutation; the UI loop uses it to detect
// content drawn from background goroutines.
func (b *Buffer) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// Clear blanks every cell with the background style.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.fillLocked()
	b.mu.Unlock()
}

// SetContent writes one cell. Out of range coordinates are ignored.
func (b *Buffer) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLocked(x, y, mainc, combc, style)
}

func (b *Buffer) setLocked(x, y int, mainc rune, combc []rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return
	}
	b.cells[y*b.w+x] = cell{main: mainc, comb: combc, style: style}
	b.gen++
}

// DrawText draws text on row y starting at x, clipped to maxWidth cells.
// Text is segmented into grapheme clusters so combining sequences and wide
// characters occupy the right number of cells. It returns the x after the
// last drawn cell.
func (b *Buffer) DrawText(x, y, maxWidth int, text string, style tcell.Style) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	limit := x + maxWidth
	if limit > b.w {
		limit = b.w
	}
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		runes := gr.Runes()
		width := gr.Width()
		if width <= 0 {
			continue
		}
		if x+width > limit {
			break
		}
		var comb []rune
		if len(runes) > 1 {
			comb = runes[1:]
		}
		b.setLocked(x, y, runes[0], comb, style)
		for i := 1; i < width; i++ {
			b.setLocked(x+i, y, 0, nil, style)
		}
		x += width
	}
	return x
}

// FillRow pads row y from x to the right edge.
func (b *Buffer) FillRow(x, y int, style tcell.Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ; x < b.w; x++ {
		b.setLocked(x, y, ' ', nil, style)
	}
}

// Blit copies the buffer onto screen with its top-left corner at (x0, y0),
// clipped to w×h cells.
func (b *Buffer) Blit(screen tcell.Screen, x0, y0, w, h int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for y := 0; y < b.h && y < h; y++ {
		for x := 0; x < b.w && x < w; x++ {
			c := b.cells[y*b.w+x]
			if c.main == 0 {
				continue
			}
			screen.SetContent(x0+x, y0+y, c.main, c.comb, c.style)
		}
	}
}

// Cell returns the rune and style at (x, y). Used by tests.
func (b *Buffer) Cell(x, y int) (rune, tcell.Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return 0, tcell.StyleDefault
	}
	c := b.cells[y*b.w+x]
	return c.main, c.style
}

// Row returns row y as a string, skipping wide-cell continuations.
func (b *Buffer) Row(y int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if y < 0 || y >= b.h {
		return ""
	}
	out := make([]rune, 0, b.w)
	for x := 0; x < b.w; x++ {
		c := b.cells[y*b.w+x]
		if c.main == 0 {
			continue
		}
		out = append(out, c.main)
		out = append(out, c.comb...)
	}
	return string(out)
}
