package nav

import (
	"github.com/kk-code-lab/millr/internal/fs"
	"github.com/kk-code-lab/millr/internal/pane"
	"github.com/kk-code-lab/millr/internal/preview"
	"github.com/kk-code-lab/millr/internal/pubsub"
)

// Event types published on the controller's broker.
const (
	EventSelectionChanged    pubsub.EventType = "selection_changed"
	EventPaneOpened          pubsub.EventType = "pane_opened"
	EventPaneClosed          pubsub.EventType = "pane_closed"
	EventPreviewStateChanged pubsub.EventType = "preview_state_changed"
	EventFocusChanged        pubsub.EventType = "focus_changed"
	EventOverlayChanged      pubsub.EventType = "overlay_changed"
	EventOpenFailed          pubsub.EventType = "open_failed"
)

// Event is the payload for every event type. Fields not relevant to the
// type are zero.
type Event struct {
	PaneIndex int
	Kind      pane.Kind
	Item      fs.Item
	Items     []fs.Item
	State     preview.State
	Success   bool
	Overlay   bool
	Err       error
}
