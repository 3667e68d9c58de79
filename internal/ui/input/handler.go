package input

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/millr/internal/nav"
)

// Outcome tells the app loop what to do after a key was processed.
type Outcome int

const (
	Continue Outcome = iota
	Quit
	ToggleHelp
	Suspend
)

// View exposes the UI state the handler needs for mode checking.
type View interface {
	OverlayOpen() bool
	HelpVisible() bool
}

// InputHandler converts tcell key events to navigation actions
type InputHandler struct {
	actionChan chan<- nav.Action
	view       View
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan<- nav.Action) *InputHandler {
	return &InputHandler{actionChan: actionChan}
}

// SetView sets the state reference for mode checking
func (ih *InputHandler) SetView(view View) {
	ih.view = view
}

// ProcessEvent converts a tcell event into an action. Only key events are
// handled; everything else continues.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) Outcome {
	if key, ok := ev.(*tcell.EventKey); ok {
		return ih.processKeyEvent(key)
	}
	return Continue
}

func (ih *InputHandler) emit(action nav.Action) Outcome {
	ih.actionChan <- action
	return Continue
}

func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) Outcome {
	overlayOpen := ih.view != nil && ih.view.OverlayOpen()
	helpVisible := ih.view != nil && ih.view.HelpVisible()

	if helpVisible {
		switch ev.Key() {
		case tcell.KeyCtrlC:
			return Quit
		case tcell.KeyEscape:
			return ToggleHelp
		case tcell.KeyRune:
			if r := ev.Rune(); r == '?' || r == 'q' || r == 'Q' {
				return ToggleHelp
			}
		}
		return Continue
	}

	shift := ev.Modifiers()&tcell.ModShift != 0

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return Quit

	case tcell.KeyCtrlZ:
		return Suspend

	case tcell.KeyEscape:
		if overlayOpen {
			return ih.emit(nav.CloseOverlay{})
		}
		return Continue

	case tcell.KeyUp:
		return ih.emit(nav.MoveUp{Extend: shift})

	case tcell.KeyDown:
		return ih.emit(nav.MoveDown{Extend: shift})

	case tcell.KeyLeft:
		return ih.emit(nav.MoveLeft{})

	case tcell.KeyRight:
		return ih.emit(nav.MoveRight{})

	case tcell.KeyEnter:
		return ih.emit(nav.OpenSelection{})

	case tcell.KeyHome:
		return ih.emit(nav.MoveFirst{})

	case tcell.KeyEnd:
		return ih.emit(nav.MoveLast{})

	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return ih.emit(nav.ToggleOverlay{})
		case 'q':
			// q closes the overlay before it quits.
			if overlayOpen {
				return ih.emit(nav.CloseOverlay{})
			}
			return Quit
		case '?':
			return ToggleHelp
		case '~':
			return ih.emit(nav.GoHome{})
		case 'g':
			return ih.emit(nav.MoveFirst{})
		case 'G':
			return ih.emit(nav.MoveLast{})
		}
	}
	return Continue
}
