package render

import "github.com/kk-code-lab/millr/internal/preview"

const (
	headerHeight    = 1
	statusHeight    = 1
	listingWidth    = 30
	separatorWidth  = 1
	minPreviewWidth = 24
	overlayMargin   = 4
)

type column struct {
	pane    int
	x       int
	width   int
	preview bool
}

type layoutMetrics struct {
	width      int
	height     int
	bodyY      int
	bodyHeight int
	// first is the index of the leftmost visible pane.
	first   int
	columns []column
}

// computeLayout places listing columns left to right at a fixed width and
// gives a trailing preview pane the rest of the row. When the columns do
// not fit, leading panes scroll out of view so the deepest ones stay
// visible.
func computeLayout(w, h, listings int, hasPreview bool) layoutMetrics {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	metrics := layoutMetrics{width: w, height: h, bodyY: headerHeight}
	metrics.bodyHeight = h - headerHeight - statusHeight
	if metrics.bodyHeight < 0 {
		metrics.bodyHeight = 0
	}

	reserve := 0
	if hasPreview {
		reserve = minPreviewWidth
	}
	step := listingWidth + separatorWidth
	for metrics.first < listings-1 && (listings-metrics.first)*step+reserve > w {
		metrics.first++
	}

	x := 0
	for i := metrics.first; i < listings; i++ {
		width := listingWidth
		if x+width > w {
			width = w - x
		}
		if width <= 0 {
			break
		}
		metrics.columns = append(metrics.columns, column{pane: i, x: x, width: width})
		x += width + separatorWidth
	}
	if hasPreview && x < w {
		metrics.columns = append(metrics.columns, column{pane: listings, x: x, width: w - x, preview: true})
	}
	return metrics
}

// previewColumn returns the column of the preview pane, if visible.
func (m layoutMetrics) previewColumn() (column, bool) {
	if n := len(m.columns); n > 0 && m.columns[n-1].preview {
		return m.columns[n-1], true
	}
	return column{}, false
}

// columnAt finds the column covering x.
func (m layoutMetrics) columnAt(x int) (column, bool) {
	for _, c := range m.columns {
		if x >= c.x && x < c.x+c.width {
			return c, true
		}
	}
	return column{}, false
}

// overlayBox is the bordered box of the overlay preview; the inner rect is
// what the overlay surface covers.
func overlayBox(w, h int) (box, inner preview.Rect) {
	bw := w - 2*overlayMargin
	bh := h - overlayMargin - headerHeight - statusHeight
	if bw < 3 {
		bw = w
	}
	if bh < 3 {
		bh = h
	}
	box = preview.Rect{X: (w - bw) / 2, Y: (h - bh) / 2, Width: bw, Height: bh}
	inner = preview.Rect{X: box.X + 1, Y: box.Y + 1, Width: bw - 2, Height: bh - 2}
	if inner.Width < 0 {
		inner.Width = 0
	}
	if inner.Height < 0 {
		inner.Height = 0
	}
	return box, inner
}
