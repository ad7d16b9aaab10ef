package domain

import "errors"

var (
	// ErrStackOverflow is returned when a push would exceed MaxStackDepth.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrEmptyStack is returned when popping or reading an empty stack.
	ErrEmptyStack = errors.New("stack is empty")
	// ErrUnknownIntent is returned when an intent id has no stored context.
	ErrUnknownIntent = errors.New("unknown intent")
	// ErrOutdatedIntent is returned when an event targets an intent that is not on top of its stack.
	ErrOutdatedIntent = errors.New("outdated intent")
	// ErrInvalidWidgetID is returned for widget ids outside [A-Za-z0-9_].
	ErrInvalidWidgetID = errors.New("invalid widget id")
	// ErrUnregisteredDialog is returned when a states group has no registered dialog.
	ErrUnregisteredDialog = errors.New("unregistered dialog")
	// ErrUnregisteredWindow is returned when a dialog has no window for a state.
	ErrUnregisteredWindow = errors.New("unregistered window")
	// ErrNoContext is returned when the manager is used outside of an active dialog.
	ErrNoContext = errors.New("no active context")
	// ErrIncorrectBackground is returned when a background manager lacks a user or chat.
	ErrIncorrectBackground = errors.New("incorrect background manager")
	// ErrNavigation is returned for invalid navigation requests.
	ErrNavigation = errors.New("invalid navigation")
	// ErrExclusiveStack is returned when starting a dialog while an exclusive one is on top.
	ErrExclusiveStack = errors.New("stack is locked by an exclusive dialog")
	// ErrAccessDenied is returned when the event's user is not allowed on the stack.
	ErrAccessDenied = errors.New("access denied")
	// ErrMessageNotFound is returned by transports when the message to edit or delete is gone.
	ErrMessageNotFound = errors.New("message not found")
)
