package pane

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/logging"
	"github.com/kk-code-lab/millr/internal/textutil"
)

const defaultTitle = "millr"

// Observer is told about structural changes after they happen.
type Observer interface {
	PaneOpened(p *Pane)
	PaneClosed(p *Pane)
	SelectionChanged(paneIndex int, items []fs.Item)
}

// Summary is the presentation state derived from the deepest listing.
type Summary struct {
	Title       string
	Status      string
	Breadcrumbs []string
}

// Stack is the ordered list of open panes. Index 0 is the root listing.
//
// Invariants kept by Push and PopLastPane, the only writers:
//   - the stack is never empty between NewStack and Close;
//   - a preview pane can only be the last pane;
//   - a pane at i > 0 is bound to the single selected item of pane i-1.
//
// Stack is not safe for concurrent use; all calls come from the UI loop.
type Stack struct {
	panes    []*Pane
	opts     Options
	observer Observer
	summary  Summary
}

// NewStack creates a stack with a root listing of root.
func NewStack(root fs.Item, opts Options, observer Observer) *Stack {
	s := &Stack{opts: opts.withDefaults(), observer: observer}
	s.Push(root)
	s.recompute()
	return s
}

func (s *Stack) Len() int { return len(s.panes) }

// Pane returns the pane at i, or nil.
func (s *Stack) Pane(i int) *Pane {
	if i < 0 || i >= len(s.panes) {
		return nil
	}
	return s.panes[i]
}

// Panes returns a copy of the pane list.
func (s *Stack) Panes() []*Pane {
	return append([]*Pane(nil), s.panes...)
}

// Last returns the deepest pane.
func (s *Stack) Last() *Pane {
	return s.Pane(len(s.panes) - 1)
}

// Push appends a pane for item: a listing for directories, a preview for
// files. Pushing past a preview pane is a programming error.
func (s *Stack) Push(item fs.Item) *Pane {
	if last := s.Last(); last != nil && !last.IsListing() {
		panic(fmt.Sprintf("pane: push %s after preview pane %d", item, last.Index()))
	}

	var p *Pane
	if item.IsDir() {
		p = CreateListing(item, s.opts)
	} else {
		p = CreateFilePreview(item, s.opts)
	}
	p.index = len(s.panes)
	p.onSelection = s.onPaneSelection
	s.panes = append(s.panes, p)

	logging.Debug("stack: push", logging.Path(item.Path()), zap.Int("pane", p.index), zap.Stringer("kind", p.kind))
	if s.observer != nil {
		s.observer.PaneOpened(p)
	}
	return p
}

// PopLastPane disposes and removes the deepest pane. The root cannot be
// popped.
func (s *Stack) PopLastPane() {
	if len(s.panes) <= 1 {
		panic("pane: pop below root")
	}
	s.popLast()
}

func (s *Stack) popLast() {
	n := len(s.panes)
	p := s.panes[n-1]
	p.Dispose()
	s.panes[n-1] = nil
	s.panes = s.panes[:n-1]

	logging.Debug("stack: pop", logging.Path(p.item.Path()), zap.Int("pane", p.index))
	if s.observer != nil {
		s.observer.PaneClosed(p)
	}
}

// PopUntil pops while the last index is greater than keepIndex.
func (s *Stack) PopUntil(keepIndex int) {
	for len(s.panes)-1 > keepIndex {
		s.PopLastPane()
	}
}

func (s *Stack) onPaneSelection(p *Pane, items []fs.Item) {
	if p.index >= len(s.panes) || s.panes[p.index] != p {
		panic(fmt.Sprintf("pane: selection from pane %d which is no longer in the stack", p.index))
	}
	s.HandleSelectionChanged(p.index, items)
}

// HandleSelectionChanged reconciles the stack after pane paneIndex changed
// its selection: everything deeper is popped first, then a single selected
// item is pushed. Zero or several selected items leave the stack collapsed
// at paneIndex.
func (s *Stack) HandleSelectionChanged(paneIndex int, items []fs.Item) {
	if paneIndex < 0 || paneIndex >= len(s.panes) {
		panic(fmt.Sprintf("pane: selection for pane %d outside stack of %d", paneIndex, len(s.panes)))
	}
	if !s.panes[paneIndex].IsListing() {
		panic(fmt.Sprintf("pane: selection from preview pane %d", paneIndex))
	}

	s.PopUntil(paneIndex)
	if len(items) == 1 {
		s.Push(items[0])
	}
	s.recompute()

	if s.observer != nil {
		s.observer.SelectionChanged(paneIndex, append([]fs.Item(nil), items...))
	}
}

// Reset disposes every pane, including the root, and starts over at root.
func (s *Stack) Reset(root fs.Item) *Pane {
	for len(s.panes) > 0 {
		s.popLast()
	}
	p := s.Push(root)
	s.recompute()
	return p
}

// Close disposes every pane. The stack must not be used afterwards.
func (s *Stack) Close() {
	for len(s.panes) > 0 {
		s.popLast()
	}
	s.recompute()
}

// DeepestSelection scans backwards for the last listing with a non-empty
// selection. It returns -1 when nothing is selected anywhere.
func (s *Stack) DeepestSelection() (int, []fs.Item) {
	for i := len(s.panes) - 1; i >= 0; i-- {
		p := s.panes[i]
		if !p.IsListing() {
			continue
		}
		if items := p.SelectedItems(); len(items) > 0 {
			return i, items
		}
	}
	return -1, nil
}

// DeepestListing returns the last listing pane.
func (s *Stack) DeepestListing() *Pane {
	for i := len(s.panes) - 1; i >= 0; i-- {
		if s.panes[i].IsListing() {
			return s.panes[i]
		}
	}
	return nil
}

// SelectedFiles collects selected files from every pane, root first.
func (s *Stack) SelectedFiles() []fs.Item {
	var files []fs.Item
	for _, p := range s.panes {
		for _, item := range p.SelectedItems() {
			if !item.IsDir() {
				files = append(files, item)
			}
		}
	}
	return files
}

// Summary returns the title, status and breadcrumbs as of the last change.
func (s *Stack) Summary() Summary {
	out := s.summary
	out.Breadcrumbs = append([]string(nil), s.summary.Breadcrumbs...)
	return out
}

func (s *Stack) recompute() {
	listing := s.DeepestListing()
	if listing == nil {
		s.summary = Summary{Title: defaultTitle}
		return
	}

	title := listing.Item().Name()
	if title == "" {
		title = defaultTitle
	}

	status := textutil.Plural(listing.Len(), "item", "items")
	if selected := len(listing.selected); selected > 0 {
		status = fmt.Sprintf("%d of %d selected", selected, listing.Len())
	}
	if err := listing.ListErr(); err != nil {
		status = "cannot read directory"
	}

	crumbs := make([]string, 0, len(s.panes))
	for _, p := range s.panes {
		crumbs = append(crumbs, p.Item().Name())
	}
	s.summary = Summary{Title: title, Status: status, Breadcrumbs: crumbs}
}
