package app

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kk-code-lab/millr/internal/logging"
	"github.com/kk-code-lab/millr/internal/nav"
	"github.com/kk-code-lab/millr/internal/pubsub"
	"github.com/kk-code-lab/millr/internal/ui/input"
	renderui "github.com/kk-code-lab/millr/internal/ui/render"
)

const doubleClickThreshold = 300 * time.Millisecond

// Run is the UI loop. Every pane, stack and renderer call happens here.
func (app *Application) Run() {
	defer app.shutdown()

	app.render()
	renderPending := false

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-app.done:
				return
			}
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	for !app.shouldQuit {
		if renderPending {
			app.render()
			renderPending = false
		}

		select {
		case ev := <-eventChan:
			if app.handleEvent(ev) {
				renderPending = true
			}
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case fn := <-app.callCh:
			fn()
			renderPending = true
		case ev, ok := <-app.events:
			if ok && app.handleBusEvent(ev) {
				renderPending = true
			}
		case <-sigContCh:
			if app.resumeAfterStop() {
				renderPending = true
			}
		}

		if app.processPending() {
			renderPending = true
		}
	}
	logging.Debug("app: loop exiting")
}

func (app *Application) render() {
	app.renderer.Render(app.ctrl, renderui.Frame{Help: app.helpVisible, Message: app.message})
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		app.message = ""
		switch app.input.ProcessEvent(ev) {
		case input.Quit:
			app.shouldQuit = true
		case input.ToggleHelp:
			app.helpVisible = !app.helpVisible
		case input.Suspend:
			// The loop resumes on SIGCONT.
			app.suspendToShell()
		}
	case *tcell.EventResize:
		app.screen.Sync()
		app.resize()
	case *tcell.EventMouse:
		app.handleMouse(ev)
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
	return true
}

func (app *Application) resize() {
	if app.renderer.SyncSurfaces() {
		app.ctrl.Resized()
	}
}

// handleMouse maps primary clicks to selection and breadcrumb jumps, and
// the wheel to cursor moves.
func (app *Application) handleMouse(ev *tcell.EventMouse) {
	if app.helpVisible {
		return
	}
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && app.lastButtons&tcell.Button1 == 0
	app.lastButtons = buttons

	switch {
	case buttons&tcell.WheelUp != 0:
		app.handleAction(nav.MoveUp{})
		return
	case buttons&tcell.WheelDown != 0:
		app.handleAction(nav.MoveDown{})
		return
	}
	if !pressed {
		return
	}

	x, y := ev.Position()
	hit := app.renderer.HitTest(x, y)
	if app.OverlayOpen() {
		// Clicking outside the overlay dismisses it.
		if hit.Kind != renderui.HitOverlay {
			app.handleAction(nav.CloseOverlay{})
		}
		return
	}

	switch hit.Kind {
	case renderui.HitBreadcrumb:
		app.handleAction(nav.Breadcrumb{Pane: hit.Pane})
	case renderui.HitRow:
		mods := ev.Modifiers()
		clickKey := fmt.Sprintf("row-%d-%d", hit.Pane, hit.Row)
		doubleClick := app.lastClickKey == clickKey && time.Since(app.lastClickTime) <= doubleClickThreshold
		app.lastClickKey = clickKey
		app.lastClickTime = time.Now()
		if doubleClick {
			app.lastClickKey = ""
		}
		app.handleAction(nav.Click{
			Pane:   hit.Pane,
			Row:    hit.Row,
			Toggle: mods&tcell.ModCtrl != 0,
			Extend: mods&tcell.ModShift != 0,
			Double: doubleClick,
		})
	}
}

func (app *Application) handleAction(action nav.Action) bool {
	if action == nil {
		return false
	}
	return app.ctrl.Dispatch(action)
}

// handleBusEvent reacts to controller events. Everything but open failures
// only needs a redraw.
func (app *Application) handleBusEvent(ev pubsub.Event[nav.Event]) bool {
	switch ev.Type {
	case nav.EventOpenFailed:
		name := ev.Payload.Item.Name()
		if name == "" {
			app.message = fmt.Sprintf("%v", ev.Payload.Err)
		} else {
			app.message = fmt.Sprintf("cannot open %s: %v", name, ev.Payload.Err)
		}
	case nav.EventPreviewStateChanged:
		logging.Debug("app: preview state",
			logging.Path(ev.Payload.Item.Path()),
			zap.Stringer("state", ev.Payload.State),
		)
	}
	return true
}

// processPending drains queued actions and posted calls without blocking.
func (app *Application) processPending() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		case fn := <-app.callCh:
			fn()
			changed = true
		default:
			return changed
		}
	}
}
