package domain

// EventKind names the category of an inbound event.
type EventKind string

const (
	KindMessage  EventKind = "message"
	KindCallback EventKind = "callback"
	KindUpdate   EventKind = "update"
)

// Event is anything the engine can process.
type Event interface {
	Kind() EventKind
	EventOrigin() Origin
}

// Origin identifies where an event came from.
type Origin struct {
	Chat   ChatKey `json:"chat"`
	UserID string  `json:"user_id"`
}

// EventOrigin implements Event for every type embedding Origin.
func (o Origin) EventOrigin() Origin {
	return o
}

// MessageEvent is an inbound user message.
type MessageEvent struct {
	Origin
	MessageID    string `json:"message_id"`
	Text         string `json:"text"`
	Media        *Media `json:"media,omitempty"`
	MediaGroupID string `json:"media_group_id,omitempty"`
}

// Kind implements Event.
func (*MessageEvent) Kind() EventKind { return KindMessage }

// CallbackEvent is a press on an inline button.
type CallbackEvent struct {
	Origin
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	Data      string `json:"data"`
}

// Kind implements Event.
func (*CallbackEvent) Kind() EventKind { return KindCallback }

// Action selects what a background update does.
type Action string

const (
	ActionStart  Action = "start"
	ActionSwitch Action = "switch"
	ActionUpdate Action = "update"
	ActionDone   Action = "done"
)

// UpdateEvent is an engine-internal event used for navigation requested
// outside of a user interaction.
type UpdateEvent struct {
	Origin
	Action   Action         `json:"action"`
	IntentID string         `json:"intent_id,omitempty"`
	StackID  string         `json:"stack_id,omitempty"`
	State    State          `json:"state,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Result   any            `json:"result,omitempty"`
	Mode     LaunchMode     `json:"mode,omitempty"`
	ShowMode ShowMode       `json:"show_mode,omitempty"`
}

// Kind implements Event.
func (*UpdateEvent) Kind() EventKind { return KindUpdate }
