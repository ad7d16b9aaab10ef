package domain

// Button is one interactive control of a rendered keyboard.
// Exactly one of CallbackData or URL is expected to be set.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Keyboard is a two-dimensional button layout, rows of buttons.
type Keyboard [][]Button

// Empty reports whether the keyboard has no buttons.
func (k Keyboard) Empty() bool {
	for _, row := range k {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// Equal compares two layouts. Nil and empty layouts are equal.
func (k Keyboard) Equal(other Keyboard) bool {
	if k.Empty() && other.Empty() {
		return true
	}
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if len(k[i]) != len(other[i]) {
			return false
		}
		for j := range k[i] {
			if k[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy.
func (k Keyboard) Clone() Keyboard {
	if k == nil {
		return nil
	}
	out := make(Keyboard, len(k))
	for i, row := range k {
		out[i] = append([]Button(nil), row...)
	}
	return out
}

// MediaType names the kind of an attachment.
type MediaType string

const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
	MediaAudio    MediaType = "audio"
)

// Media is an opaque attachment descriptor passed through to the transport.
type Media struct {
	Type     MediaType `json:"type"`
	URL      string    `json:"url,omitempty"`
	Path     string    `json:"path,omitempty"`
	FileID   string    `json:"file_id,omitempty"`
	UniqueID string    `json:"unique_id,omitempty"`
}

// Same reports whether both descriptors point at the same attachment.
// Transport file ids are only compared when both sides carry one.
func (m *Media) Same(other *Media) bool {
	if m == nil || other == nil {
		return m == nil && other == nil
	}
	if m.UniqueID != "" && other.UniqueID != "" {
		return m.UniqueID == other.UniqueID
	}
	if m.FileID != "" && other.FileID != "" && m.FileID != other.FileID {
		return false
	}
	return m.Type == other.Type && m.URL == other.URL && m.Path == other.Path
}

// NewMessage is the rendered screen handed to the transport.
type NewMessage struct {
	Chat              ChatKey  `json:"chat"`
	Text              string   `json:"text"`
	Keyboard          Keyboard `json:"keyboard,omitempty"`
	Media             *Media   `json:"media,omitempty"`
	ShowMode          ShowMode `json:"show_mode"`
	ParseMode         string   `json:"parse_mode,omitempty"`
	DisableWebPreview bool     `json:"disable_web_preview,omitempty"`
}

// OldMessage is the remembered last screen of a stack.
type OldMessage struct {
	Chat      ChatKey  `json:"chat"`
	MessageID string   `json:"message_id"`
	Text      string   `json:"text"`
	Keyboard  Keyboard `json:"keyboard,omitempty"`
	Media     *Media   `json:"media,omitempty"`
}

// HasKeyboard reports whether the message still shows interactive controls.
func (m *OldMessage) HasKeyboard() bool {
	return m != nil && !m.Keyboard.Empty()
}

// Ref returns the transport reference of the message.
func (m *OldMessage) Ref() MessageRef {
	return MessageRef{Chat: m.Chat, MessageID: m.MessageID}
}

// Clone returns a deep copy.
func (m *OldMessage) Clone() *OldMessage {
	if m == nil {
		return nil
	}
	next := *m
	next.Keyboard = m.Keyboard.Clone()
	if m.Media != nil {
		media := *m.Media
		next.Media = &media
	}
	return &next
}

// MessageRef addresses a message already delivered by the transport.
type MessageRef struct {
	Chat      ChatKey `json:"chat"`
	MessageID string  `json:"message_id"`
}

// SentMessage is what the transport reports back after delivering a message.
type SentMessage struct {
	MessageID     string `json:"message_id"`
	MediaID       string `json:"media_id,omitempty"`
	MediaUniqueID string `json:"media_unique_id,omitempty"`
}
