package domain

import "strings"

// stateSeparator splits the group and the name of a State.
const stateSeparator = ":"

// State identifies one window inside a dialog, formatted as "group:name".
type State string

// Group returns the states group the state belongs to.
func (s State) Group() string {
	group, _, found := strings.Cut(string(s), stateSeparator)
	if !found {
		return ""
	}
	return group
}

// Name returns the state name without its group.
func (s State) Name() string {
	_, name, found := strings.Cut(string(s), stateSeparator)
	if !found {
		return string(s)
	}
	return name
}

// Valid reports whether both the group and the name are present.
func (s State) Valid() bool {
	return s.Group() != "" && s.Name() != ""
}

// StatesGroup is the addressable identity shared by all windows of one dialog.
type StatesGroup string

// State builds a State of this group.
func (g StatesGroup) State(name string) State {
	return State(string(g) + stateSeparator + name)
}

// String implements fmt.Stringer.
func (g StatesGroup) String() string {
	return string(g)
}
