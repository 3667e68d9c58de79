// Package pane implements the Miller-column navigation model: panes bound
// to one item each, and the stack that keeps them in step with selection.
package pane

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/infocache"
	"github.com/kk-code-lab/millr/internal/logging"
	"github.com/kk-code-lab/millr/internal/preview"
	"github.com/kk-code-lab/millr/internal/textutil"
)

// Kind tells listing panes from preview panes.
type Kind int

const (
	KindListing Kind = iota
	KindPreview
)

func (k Kind) String() string {
	if k == KindPreview {
		return "preview"
	}
	return "listing"
}

// SessionFactory creates the preview session for a file.
type SessionFactory func(item fs.Item) *preview.Session

// Options are the collaborators injected into every pane.
type Options struct {
	Lister   fs.Lister
	Hidden   fs.HiddenFilter
	Info     *infocache.Cache
	Sessions SessionFactory
}

func (o Options) withDefaults() Options {
	if o.Lister == nil {
		o.Lister = fs.OSLister{}
	}
	if o.Hidden == nil {
		o.Hidden = fs.IsHiddenItem
	}
	return o
}

// SelectionHandler receives a snapshot of the selected items.
type SelectionHandler func(p *Pane, items []fs.Item)

// Pane is one column. Listing panes hold the children of a directory and
// a selection; preview panes own at most one preview session.
type Pane struct {
	index int
	item  fs.Item
	kind  Kind
	opts  Options

	children []fs.Item
	selected map[int]struct{}
	cursor   int
	anchor   int
	listErr  error

	session *preview.Session

	onSelection SelectionHandler
	disposed    bool
}

// CreateListing enumerates dir. Enumeration errors leave the pane empty
// and are logged; browsing stays usable.
func CreateListing(dir fs.Item, opts Options) *Pane {
	opts = opts.withDefaults()
	p := &Pane{
		item:     dir,
		kind:     KindListing,
		opts:     opts,
		selected: make(map[int]struct{}),
		cursor:   -1,
		anchor:   -1,
	}

	children, err := opts.Lister.ListChildren(dir.Path())
	if err != nil {
		logging.Warn("pane: listing failed", logging.Path(dir.Path()), logging.Err(err))
		p.listErr = err
		return p
	}
	p.children = make([]fs.Item, 0, len(children))
	for _, child := range children {
		if opts.Hidden(child) {
			continue
		}
		p.children = append(p.children, child)
	}
	return p
}

// CreateFilePreview returns a preview pane. The session starts lazily.
func CreateFilePreview(file fs.Item, opts Options) *Pane {
	return &Pane{
		item:     file,
		kind:     KindPreview,
		opts:     opts.withDefaults(),
		selected: make(map[int]struct{}),
		cursor:   -1,
		anchor:   -1,
	}
}

func (p *Pane) Index() int                { return p.index }
func (p *Pane) Item() fs.Item             { return p.item }
func (p *Pane) Kind() Kind                { return p.kind }
func (p *Pane) IsListing() bool           { return p.kind == KindListing }
func (p *Pane) Len() int                  { return len(p.children) }
func (p *Pane) ListErr() error            { return p.listErr }
func (p *Pane) Disposed() bool            { return p.disposed }
func (p *Pane) Cursor() int               { return p.cursor }
func (p *Pane) Session() *preview.Session { return p.session }

// Children returns a copy of the listing.
func (p *Pane) Children() []fs.Item {
	return append([]fs.Item(nil), p.children...)
}

// Child returns the child at i.
func (p *Pane) Child(i int) (fs.Item, bool) {
	if i < 0 || i >= len(p.children) {
		return fs.Item{}, false
	}
	return p.children[i], true
}

// IndexOf finds a child by identity.
func (p *Pane) IndexOf(item fs.Item) int {
	for i, child := range p.children {
		if child.Equal(item) {
			return i
		}
	}
	return -1
}

// IsSelected reports whether child i is selected.
func (p *Pane) IsSelected(i int) bool {
	_, ok := p.selected[i]
	return ok
}

// SelectedIndices returns the selection in ascending order.
func (p *Pane) SelectedIndices() []int {
	out := make([]int, 0, len(p.selected))
	for i := range p.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// SelectedItems returns the selected children in listing order.
func (p *Pane) SelectedItems() []fs.Item {
	indices := p.SelectedIndices()
	items := make([]fs.Item, 0, len(indices))
	for _, i := range indices {
		items = append(items, p.children[i])
	}
	return items
}

// FocusedItem returns the child under the cursor.
func (p *Pane) FocusedItem() (fs.Item, bool) {
	return p.Child(p.cursor)
}

// Select replaces the selection. Out of range indices are ignored and
// duplicates collapse. The cursor moves to the last valid index given.
func (p *Pane) Select(indices ...int) {
	if !p.IsListing() {
		return
	}
	p.selected = make(map[int]struct{}, len(indices))
	first := -1
	for _, i := range indices {
		if i < 0 || i >= len(p.children) {
			continue
		}
		if first < 0 {
			first = i
		}
		p.selected[i] = struct{}{}
		p.cursor = i
	}
	if first >= 0 {
		p.anchor = first
	}
	p.raise()
}

// ClearSelection deselects everything but keeps the cursor.
func (p *Pane) ClearSelection() {
	if !p.IsListing() {
		return
	}
	p.selected = make(map[int]struct{})
	p.raise()
}

// FocusItem makes index the only selected child and the cursor.
func (p *Pane) FocusItem(index int) {
	if index < 0 || index >= len(p.children) {
		return
	}
	p.anchor = index
	p.Select(index)
}

// ExtendSelection selects the range from the anchor to index.
func (p *Pane) ExtendSelection(index int) {
	if !p.IsListing() || index < 0 || index >= len(p.children) {
		return
	}
	anchor := p.anchor
	if anchor < 0 || anchor >= len(p.children) {
		anchor = index
	}
	lo, hi := anchor, index
	if lo > hi {
		lo, hi = hi, lo
	}
	p.selected = make(map[int]struct{}, hi-lo+1)
	for i := lo; i <= hi; i++ {
		p.selected[i] = struct{}{}
	}
	p.anchor = anchor
	p.cursor = index
	p.raise()
}

// ToggleItem flips one child in or out of the selection.
func (p *Pane) ToggleItem(index int) {
	if !p.IsListing() || index < 0 || index >= len(p.children) {
		return
	}
	if p.IsSelected(index) {
		delete(p.selected, index)
	} else {
		p.selected[index] = struct{}{}
	}
	p.cursor = index
	p.anchor = index
	p.raise()
}

// MoveCursor moves the cursor by delta and selects the new child, or
// extends the selection to it. It reports false when the cursor could
// not move.
func (p *Pane) MoveCursor(delta int, extend bool) bool {
	if !p.IsListing() || len(p.children) == 0 {
		return false
	}
	target := p.cursor + delta
	if p.cursor < 0 {
		target = 0
		if delta < 0 {
			target = len(p.children) - 1
		}
	}
	if target < 0 || target >= len(p.children) {
		return false
	}
	if extend {
		p.ExtendSelection(target)
	} else {
		p.FocusItem(target)
	}
	return true
}

func (p *Pane) raise() {
	if p.disposed || p.onSelection == nil {
		return
	}
	p.onSelection(p, p.SelectedItems())
}

// StartPreview creates this pane's session and starts it on surface.
// Calling it again while a session exists returns a resolved false.
func (p *Pane) StartPreview(surface preview.Surface) <-chan bool {
	if p.kind != KindPreview || p.disposed || p.session != nil || p.opts.Sessions == nil {
		done := make(chan bool, 1)
		done <- false
		return done
	}
	p.session = p.opts.Sessions(p.item)
	return p.session.Start(surface)
}

// Info returns file metadata, through the injected cache when present.
func (p *Pane) Info() (fs.Info, error) {
	if p.opts.Info != nil {
		return p.opts.Info.Info(p.item)
	}
	return fs.Stat(p.item.Path())
}

// Details is the static fallback shown when no renderer is attached.
func (p *Pane) Details() []string {
	lines := []string{p.item.Name()}
	info, err := p.Info()
	if err != nil {
		return append(lines, "", "unavailable: "+err.Error())
	}

	kind := "File"
	if ext := strings.TrimPrefix(p.item.Ext(), "."); ext != "" {
		kind = strings.ToUpper(ext) + " file"
	}
	lines = append(lines,
		"",
		"Type:     "+kind,
		"Size:     "+textutil.FormatSize(info.Size),
		"Modified: "+info.Modified.Format("2006-01-02 15:04"),
		"Mode:     "+info.Mode.String(),
	)
	if info.IsSymlink {
		lines = append(lines, "Symlink:  yes")
	}
	if s := p.session; s != nil {
		if err := s.Err(); err != nil {
			lines = append(lines, "", fmt.Sprintf("No preview (%s)", s.State()))
		}
	}
	return lines
}

// Dispose detaches the selection handler and unloads any session.
// It is the single teardown path for every pane kind and is idempotent.
func (p *Pane) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.onSelection = nil
	if p.session != nil {
		logging.Debug("pane: unloading preview", logging.Path(p.item.Path()), zap.Int("pane", p.index))
		p.session.Unload()
	}
}
