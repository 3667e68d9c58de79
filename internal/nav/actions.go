package nav

// Action is a user intent decoded by the input layer.
type Action interface {
	action()
}

// MoveLeft selects the previous sibling in the root pane, or collapses the
// focused pane and moves focus back one pane.
type MoveLeft struct{}

// MoveRight advances to the next sibling of a focused file, or moves focus
// into the pane opened for a focused directory.
type MoveRight struct{}

type MoveUp struct{ Extend bool }

type MoveDown struct{ Extend bool }

type MoveFirst struct{}

type MoveLast struct{}

// OpenSelection hands every selected file to the OS default action.
type OpenSelection struct{}

type ToggleOverlay struct{}

type CloseOverlay struct{}

type GoHome struct{}

// GoTo resets the stack to a directory.
type GoTo struct{ Path string }

// Click selects Row in Pane. Toggle adds or removes the row, Extend selects
// a range from the anchor and Double opens the selection.
type Click struct {
	Pane   int
	Row    int
	Toggle bool
	Extend bool
	Double bool
}

// Breadcrumb collapses everything after Pane.
type Breadcrumb struct{ Pane int }

func (MoveLeft) action()      {}
func (MoveRight) action()     {}
func (MoveUp) action()        {}
func (MoveDown) action()      {}
func (MoveFirst) action()     {}
func (MoveLast) action()      {}
func (OpenSelection) action() {}
func (ToggleOverlay) action() {}
func (CloseOverlay) action()  {}
func (GoHome) action()        {}
func (GoTo) action()          {}
func (Click) action()         {}
func (Breadcrumb) action()    {}
