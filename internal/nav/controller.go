// Package nav wires user actions to the pane stack and owns the overlay
// preview. Everything here runs on the UI loop.
package nav

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/infocache"
	"github.com/kk-code-lab/millr/internal/logging"
	"github.com/kk-code-lab/millr/internal/pane"
	"github.com/kk-code-lab/millr/internal/preview"
	"github.com/kk-code-lab/millr/internal/pubsub"
)

// SurfaceProvider hands out the display surfaces previews attach to.
type SurfaceProvider interface {
	PaneSurface(index int) preview.Surface
	OverlaySurface() preview.Surface
}

// Opener launches a file with its associated application.
type Opener interface {
	Open(path string) error
}

// Config holds the collaborators of a Controller.
type Config struct {
	Lister     fs.Lister
	Hidden     fs.HiddenFilter
	Info       *infocache.Cache
	Registry   *preview.Registry
	Dispatcher preview.Dispatcher
	Surfaces   SurfaceProvider
	Opener     Opener
	Events     pubsub.Publisher[Event]
	// Home is the directory GoHome resets to. Defaults to the user's home.
	Home string
}

// Controller is the top-level navigation orchestrator.
type Controller struct {
	cfg   Config
	stack *pane.Stack
	focus int

	overlay     *preview.Session
	overlayItem fs.Item
}

// New builds a controller rooted at root.
func New(root fs.Item, cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	c.stack = pane.NewStack(root, pane.Options{
		Lister:   cfg.Lister,
		Hidden:   cfg.Hidden,
		Info:     cfg.Info,
		Sessions: c.newSession,
	}, c)
	return c
}

func (c *Controller) Stack() *pane.Stack { return c.stack }
func (c *Controller) Focus() int         { return c.focus }

// Overlay returns the overlay session and its item, or nil.
func (c *Controller) Overlay() (*preview.Session, fs.Item) {
	return c.overlay, c.overlayItem
}

func (c *Controller) publish(t pubsub.EventType, ev Event) {
	if c.cfg.Events != nil {
		c.cfg.Events.Publish(t, ev)
	}
}

func (c *Controller) newSession(item fs.Item) *preview.Session {
	return preview.NewSession(item, preview.Options{
		Registry:   c.cfg.Registry,
		Dispatcher: c.cfg.Dispatcher,
		OnStateChanged: func(s *preview.Session, state preview.State) {
			// Runs on loader goroutines too; only publish here.
			switch state {
			case preview.StateAttached, preview.StateFailed:
				c.publish(EventPreviewStateChanged, Event{
					Item:    s.Item(),
					State:   state,
					Success: state == preview.StateAttached,
					Err:     s.Err(),
				})
			}
		},
	})
}

// PaneOpened starts the preview of a new preview pane on its column surface.
func (c *Controller) PaneOpened(p *pane.Pane) {
	c.publish(EventPaneOpened, Event{PaneIndex: p.Index(), Kind: p.Kind(), Item: p.Item()})
	if p.Kind() != pane.KindPreview || c.cfg.Surfaces == nil {
		return
	}
	if surface := c.cfg.Surfaces.PaneSurface(p.Index()); surface != nil {
		p.StartPreview(surface)
	}
}

func (c *Controller) PaneClosed(p *pane.Pane) {
	c.publish(EventPaneClosed, Event{PaneIndex: p.Index(), Kind: p.Kind(), Item: p.Item()})
	if c.stack != nil && c.focus >= c.stack.Len() {
		c.setFocus(c.lastListingIndex())
	}
}

// SelectionChanged publishes the new selection and closes the overlay once
// its item is no longer the deepest single selection.
func (c *Controller) SelectionChanged(paneIndex int, items []fs.Item) {
	c.publish(EventSelectionChanged, Event{PaneIndex: paneIndex, Items: items})
	if c.overlay == nil || c.stack == nil {
		return
	}
	if _, deepest := c.stack.DeepestSelection(); len(deepest) != 1 || !deepest[0].Equal(c.overlayItem) {
		c.closeOverlay()
	}
}

func (c *Controller) lastListingIndex() int {
	if c.stack == nil {
		return 0
	}
	if p := c.stack.DeepestListing(); p != nil {
		return p.Index()
	}
	return 0
}

func (c *Controller) setFocus(index int) {
	if index < 0 {
		index = 0
	}
	if index == c.focus {
		return
	}
	c.focus = index
	c.publish(EventFocusChanged, Event{PaneIndex: index})
}

// focused returns the focused listing pane, repairing focus if it points
// past the deepest listing.
func (c *Controller) focused() *pane.Pane {
	p := c.stack.Pane(c.focus)
	if p == nil || !p.IsListing() {
		c.setFocus(c.lastListingIndex())
		p = c.stack.Pane(c.focus)
	}
	return p
}

// Dispatch applies an action. It reports whether the action was understood.
func (c *Controller) Dispatch(action Action) bool {
	if c.stack.Len() == 0 {
		return false
	}
	switch a := action.(type) {
	case MoveLeft:
		c.moveLeft()
	case MoveRight:
		c.moveRight()
	case MoveUp:
		c.focused().MoveCursor(-1, a.Extend)
	case MoveDown:
		c.focused().MoveCursor(1, a.Extend)
	case MoveFirst:
		c.focused().FocusItem(0)
	case MoveLast:
		p := c.focused()
		p.FocusItem(p.Len() - 1)
	case OpenSelection:
		c.openSelection()
	case ToggleOverlay:
		c.toggleOverlay()
	case CloseOverlay:
		c.closeOverlay()
	case GoHome:
		c.goHome()
	case GoTo:
		c.goTo(a.Path)
	case Click:
		c.click(a)
	case Breadcrumb:
		c.breadcrumb(a.Pane)
	default:
		return false
	}
	return true
}

func (c *Controller) moveLeft() {
	p := c.focused()
	if p.Index() == 0 {
		// Only a single selection with a previous sibling moves.
		if idxs := p.SelectedIndices(); len(idxs) == 1 && idxs[0] > 0 {
			p.FocusItem(idxs[0] - 1)
		}
		return
	}
	p.ClearSelection()
	c.setFocus(p.Index() - 1)
}

func (c *Controller) moveRight() {
	p := c.focused()
	item, ok := p.FocusedItem()
	if !ok {
		p.FocusItem(0)
		return
	}
	if !item.IsDir() {
		p.MoveCursor(1, false)
		return
	}
	next := c.stack.Pane(p.Index() + 1)
	if next == nil || !next.IsListing() || !next.Item().Equal(item) {
		return
	}
	c.setFocus(next.Index())
	next.FocusItem(0)
}

func (c *Controller) openSelection() {
	if c.cfg.Opener == nil {
		return
	}
	for _, item := range c.stack.SelectedFiles() {
		if err := c.cfg.Opener.Open(item.Path()); err != nil {
			logging.Warn("nav: open failed", logging.Path(item.Path()), logging.Err(err))
			c.publish(EventOpenFailed, Event{Item: item, Err: err})
		}
	}
}

func (c *Controller) toggleOverlay() {
	if c.overlay != nil {
		c.closeOverlay()
		return
	}
	_, items := c.stack.DeepestSelection()
	if len(items) != 1 || items[0].IsDir() || c.cfg.Surfaces == nil {
		return
	}
	surface := c.cfg.Surfaces.OverlaySurface()
	if surface == nil {
		return
	}
	c.overlayItem = items[0]
	c.overlay = c.newSession(items[0])
	c.overlay.Start(surface)
	c.publish(EventOverlayChanged, Event{Overlay: true, Item: items[0]})
}

// closeOverlay unloads the overlay session. Safe to call repeatedly.
func (c *Controller) closeOverlay() {
	if c.overlay == nil {
		return
	}
	c.overlay.Unload()
	item := c.overlayItem
	c.overlay = nil
	c.overlayItem = fs.Item{}
	c.publish(EventOverlayChanged, Event{Overlay: false, Item: item})
}

func (c *Controller) goHome() {
	home := c.cfg.Home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			logging.Warn("nav: no home directory", logging.Err(err))
			return
		}
	}
	c.goTo(home)
}

func (c *Controller) goTo(path string) {
	item, err := fs.ItemFromPath(path)
	if err != nil || !item.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", path)
		}
		logging.Warn("nav: cannot go to path", logging.Path(path), logging.Err(err))
		c.publish(EventOpenFailed, Event{Err: err})
		return
	}
	c.Reset(item)
}

// Reset closes the overlay and restarts the stack at root.
func (c *Controller) Reset(root fs.Item) {
	c.closeOverlay()
	c.stack.Reset(root)
	c.setFocus(0)
}

func (c *Controller) click(a Click) {
	p := c.stack.Pane(a.Pane)
	if p == nil || !p.IsListing() {
		return
	}
	if _, ok := p.Child(a.Row); !ok {
		return
	}
	c.setFocus(p.Index())
	switch {
	case a.Toggle:
		p.ToggleItem(a.Row)
	case a.Extend:
		p.ExtendSelection(a.Row)
	case a.Double:
		if !p.IsSelected(a.Row) || len(p.SelectedIndices()) != 1 {
			p.FocusItem(a.Row)
		}
		c.openSelection()
	default:
		p.FocusItem(a.Row)
	}
}

func (c *Controller) breadcrumb(index int) {
	p := c.stack.Pane(index)
	if p == nil {
		return
	}
	if !p.IsListing() {
		return
	}
	p.ClearSelection()
	c.setFocus(index)
}

// Resized forwards new surface geometry to every attached session.
func (c *Controller) Resized() {
	if c.cfg.Surfaces == nil {
		return
	}
	for _, p := range c.stack.Panes() {
		if s := p.Session(); s != nil {
			if surface := c.cfg.Surfaces.PaneSurface(p.Index()); surface != nil {
				s.Resize(preview.FullRect(surface))
			}
		}
	}
	if c.overlay != nil {
		if surface := c.cfg.Surfaces.OverlaySurface(); surface != nil {
			c.overlay.Resize(preview.FullRect(surface))
		}
	}
}

// Close unloads the overlay and every pane. Used at shutdown.
func (c *Controller) Close() {
	c.closeOverlay()
	c.stack.Close()
	logging.Debug("nav: closed", zap.Int("focus", c.focus))
}
