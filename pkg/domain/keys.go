package domain

import "strings"

// ChatKey identifies a chat (and optional thread) on a given bot.
type ChatKey struct {
	BotID    string `json:"bot_id,omitempty"`
	ChatID   string `json:"chat_id"`
	ThreadID string `json:"thread_id,omitempty"`
}

// String renders the key as a storage-friendly path.
func (k ChatKey) String() string {
	return strings.Join([]string{k.BotID, k.ChatID, k.ThreadID}, "/")
}

// Valid reports whether the key addresses a chat.
func (k ChatKey) Valid() bool {
	return k.ChatID != ""
}

// StackKey addresses one stack. The user participates only for the default stack,
// shared stacks are addressed by chat and stack id.
type StackKey struct {
	Chat    ChatKey `json:"chat"`
	UserID  string  `json:"user_id,omitempty"`
	StackID string  `json:"stack_id,omitempty"`
}

// DefaultStackKey returns the key of the primary stack of user in chat.
func DefaultStackKey(chat ChatKey, userID string) StackKey {
	return StackKey{Chat: chat, UserID: userID}
}

// String renders the key as a storage-friendly path.
func (k StackKey) String() string {
	if k.StackID == DefaultStackID {
		return k.Chat.String() + "/u:" + k.UserID
	}
	return k.Chat.String() + "/s:" + k.StackID
}

// Valid reports whether the key addresses a stack.
func (k StackKey) Valid() bool {
	if !k.Chat.Valid() {
		return false
	}
	return k.StackID != DefaultStackID || k.UserID != ""
}
