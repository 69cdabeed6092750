package page

type EventKind string

const (
	EventMove         EventKind = "move"
	EventClick        EventKind = "click"
	EventContextMenu  EventKind = "contextmenu"
	EventKeyDown      EventKind = "keydown"
	EventPanelDown    EventKind = "panel-down"
	EventDragMove     EventKind = "drag-move"
	EventDragUp       EventKind = "drag-up"
	EventPanelEnter   EventKind = "panel-enter"
	EventPanelLeave   EventKind = "panel-leave"
	EventPanelClose   EventKind = "panel-close"
	EventPanelInspect EventKind = "panel-inspect"
	EventToolbar      EventKind = "toolbar"
	EventNavigated    EventKind = "navigated"
)

// Toolbar actions carried in Event.Action.
const (
	ActionPicker = "picker"
	ActionClear  = "clear"
	ActionClose  = "close"
)

// Event is one input event forwarded by the page. Handle is empty when the
// target is part of the inspector UI, in which case UI is set, and Panel
// names the pinned panel under the pointer if any.
type Event struct {
	Kind   EventKind `json:"kind"`
	Handle Handle    `json:"handle,omitempty"`
	UI     bool      `json:"ui,omitempty"`
	Panel  string    `json:"panel,omitempty"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Button int       `json:"button,omitempty"`
	Key    string    `json:"key,omitempty"`
	Ctrl   bool      `json:"ctrl,omitempty"`
	Shift  bool      `json:"shift,omitempty"`
	Alt    bool      `json:"alt,omitempty"`
	Meta   bool      `json:"meta,omitempty"`
	Action string    `json:"action,omitempty"`
}

// Listeners selects which event classes the page forwards.
type Listeners uint8

const (
	ListenShortcut Listeners = 1 << iota // toggle chord, on while attached
	ListenEscape                         // escape keydown, on while active
	ListenPicker                         // move, click, contextmenu
	ListenDrag                           // drag-move, drag-up
)

func (l Listeners) Has(f Listeners) bool { return l&f == f }
