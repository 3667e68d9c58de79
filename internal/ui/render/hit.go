package render

// HitKind classifies what a screen cell shows.
type HitKind int

const (
	HitNone HitKind = iota
	HitRow
	HitBreadcrumb
	HitOverlay
)

// Hit is the result of HitTest. Row is an index into the pane's listing.
type Hit struct {
	Kind HitKind
	Pane int
	Row  int
}

// HitTest maps a cell to what the last frame drew there.
func (r *Renderer) HitTest(x, y int) Hit {
	if r.overlay {
		box, _ := overlayBox(r.layout.width, r.layout.height)
		if x >= box.X && x < box.X+box.Width && y >= box.Y && y < box.Y+box.Height {
			return Hit{Kind: HitOverlay}
		}
	}
	if y == 0 {
		for _, c := range r.crumbs {
			if x >= c.x0 && x < c.x1 {
				return Hit{Kind: HitBreadcrumb, Pane: c.pane}
			}
		}
		return Hit{}
	}

	row := y - r.layout.bodyY
	if row < 0 || row >= r.layout.bodyHeight {
		return Hit{}
	}
	col, ok := r.layout.columnAt(x)
	if !ok || col.preview {
		return Hit{}
	}
	state, ok := r.scroll[col.pane]
	if !ok {
		return Hit{}
	}
	return Hit{Kind: HitRow, Pane: col.pane, Row: state.offset + row}
}
