// Package dialog groups windows into dialogs and resolves them by states group.
//
// A Dialog is an ordered, immutable list of windows sharing one domain.StatesGroup.
// Rendering a window merges the dialog and window getters, renders the widget tree and
// prefixes every callback payload with the intent id, so stale keyboards can be told
// apart from the active one.
package dialog
