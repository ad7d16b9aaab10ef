package domain

import (
	"context"
	"time"
)

// DialogEvent describes a dialog entering or leaving a stack.
type DialogEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	IntentID  string     `json:"intent_id"`
	StackID   string     `json:"stack_id"`
	Dialog    string     `json:"dialog"`
	State     State      `json:"state"`
	Mode      LaunchMode `json:"mode,omitempty"`
	Result    any        `json:"result,omitempty"`
}

// WindowEvent describes a screen delivered to the transport.
type WindowEvent struct {
	Timestamp time.Time `json:"timestamp"`
	IntentID  string    `json:"intent_id"`
	State     State     `json:"state"`
	// Operation is one of "send", "edit_text", "edit_controls" or "delete_and_send".
	Operation string        `json:"operation"`
	Duration  time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnDialogStart func(context.Context, *DialogEvent)
	OnDialogDone  func(context.Context, *DialogEvent)
	OnDialogClose func(context.Context, *DialogEvent)
	OnWindowShow  func(context.Context, *WindowEvent)
	OnEventError  func(context.Context, Event, error)
}
