package domain

// LaunchMode governs how starting a dialog affects the existing stack.
type LaunchMode string

const (
	// LaunchStandard pushes the new dialog on top of the stack.
	LaunchStandard LaunchMode = "standard"
	// LaunchRoot closes every dialog on the stack before pushing the new one.
	LaunchRoot LaunchMode = "root"
	// LaunchExclusive behaves like LaunchRoot and rejects further starts while the dialog is active.
	LaunchExclusive LaunchMode = "exclusive"
	// LaunchSingleTop replaces the top intent in place when it belongs to the same dialog.
	LaunchSingleTop LaunchMode = "single_top"
)

// Valid reports whether m is a known launch mode. The zero value counts as standard.
func (m LaunchMode) Valid() bool {
	switch m {
	case "", LaunchStandard, LaunchRoot, LaunchExclusive, LaunchSingleTop:
		return true
	}
	return false
}

// ShowMode governs whether a re-render edits the last message or sends a new one.
type ShowMode string

const (
	// ShowAuto edits on control events and sends a new message on inbound user messages.
	ShowAuto ShowMode = "auto"
	// ShowEdit always edits the last message when one exists.
	ShowEdit ShowMode = "edit"
	// ShowSend always sends a new message.
	ShowSend ShowMode = "send"
	// ShowDeleteAndSend deletes the last message before sending a new one.
	ShowDeleteAndSend ShowMode = "delete_and_send"
	// ShowNoUpdate skips rendering entirely.
	ShowNoUpdate ShowMode = "no_update"
)
