package dialog

import "strings"

// CallbackSeparator splits the intent id from the widget payload in callback data.
const CallbackSeparator = "\x1d"

// EncodeCallback prefixes a widget payload with the intent owning the keyboard.
func EncodeCallback(intentID, payload string) string {
	return intentID + CallbackSeparator + payload
}

// DecodeCallback splits callback data produced by EncodeCallback.
// ok is false for data that carries no intent prefix.
func DecodeCallback(data string) (intentID, payload string, ok bool) {
	intentID, payload, ok = strings.Cut(data, CallbackSeparator)
	if !ok || intentID == "" {
		return "", data, false
	}
	return intentID, payload, true
}
