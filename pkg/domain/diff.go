package domain

// MessageDiff represents the changes between the last delivered screen and a freshly rendered one.
type MessageDiff struct {
	TextChanged     bool `json:"text_changed"`
	KeyboardChanged bool `json:"keyboard_changed"`
	MediaChanged    bool `json:"media_changed"`
}

// IsEmpty reports whether the screens are identical.
func (d MessageDiff) IsEmpty() bool {
	return !d.TextChanged && !d.KeyboardChanged && !d.MediaChanged
}

// DiffMessage compares old against next. A nil old message differs in every aspect.
func DiffMessage(old *OldMessage, next *NewMessage) MessageDiff {
	if next == nil {
		return MessageDiff{}
	}
	if old == nil {
		return MessageDiff{TextChanged: true, KeyboardChanged: true, MediaChanged: next.Media != nil}
	}
	return MessageDiff{
		TextChanged:     old.Text != next.Text,
		KeyboardChanged: !old.Keyboard.Equal(next.Keyboard),
		MediaChanged:    !old.Media.Same(next.Media),
	}
}
