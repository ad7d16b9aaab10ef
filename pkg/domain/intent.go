package domain

// Intent is the identity of one dialog instance living on a Stack.
// Data is the start payload and is never modified after creation.
type Intent struct {
	ID         string         `json:"id"`
	DialogName string         `json:"dialog_name"`
	Data       map[string]any `json:"data,omitempty"`
}
