package domain

import "slices"

// AccessSettings restricts which users may interact with a stack or a dialog.
// An empty user list allows everybody.
type AccessSettings struct {
	UserIDs []string       `json:"user_ids,omitempty"`
	Custom  map[string]any `json:"custom,omitempty"`
}

// Allows reports whether userID passes the settings.
func (a *AccessSettings) Allows(userID string) bool {
	if a == nil || len(a.UserIDs) == 0 {
		return true
	}
	return slices.Contains(a.UserIDs, userID)
}

// Clone returns a deep copy.
func (a *AccessSettings) Clone() *AccessSettings {
	if a == nil {
		return nil
	}
	return &AccessSettings{
		UserIDs: append([]string(nil), a.UserIDs...),
		Custom:  copyMap(a.Custom),
	}
}
