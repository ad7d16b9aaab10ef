// Package runtime is the dialog state machine.
//
// The Engine turns inbound events into navigation over a stack of intents. Every event
// runs inside a session scope: the stack and its contexts are loaded, a per-event Manager
// applies navigation, the active window is rendered at most once and the scope is saved.
package runtime
