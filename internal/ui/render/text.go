package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// drawTextLine draws text from startX one grapheme cluster per cell run,
// clipped to maxWidth cells, and returns the x after the last drawn cell.
func (r *Renderer) drawTextLine(startX, y, maxWidth int, text string, style tcell.Style) int {
	x := startX
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		w := gr.Width()
		if x-startX+w > maxWidth {
			break
		}
		runes := gr.Runes()
		r.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}

// fillRange paints spaces over [from, to) on row y.
func (r *Renderer) fillRange(from, to, y int, style tcell.Style) {
	for x := from; x < to; x++ {
		r.screen.SetContent(x, y, ' ', nil, style)
	}
}
