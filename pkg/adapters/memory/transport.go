package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
)

var _ ports.Transport = (*Transport)(nil)

// Operation names a transport call recorded by Transport.
type Operation string

const (
	OpSend         Operation = "send"
	OpEditText     Operation = "edit_text"
	OpEditControls Operation = "edit_controls"
	OpDelete       Operation = "delete"
)

// Call is one recorded transport invocation.
type Call struct {
	Op        Operation
	Chat      domain.ChatKey
	MessageID string
	Text      string
	Keyboard  domain.Keyboard
	Media     *domain.Media
}

// Message is the current state of a delivered message.
type Message struct {
	ID       string
	Text     string
	Keyboard domain.Keyboard
	Media    *domain.Media
}

// Transport implements ports.Transport by keeping every chat in memory.
// It backs tests, the terminal chat and the HTTP simulator.
// Safe for concurrent use.
type Transport struct {
	mu       sync.Mutex
	seq      int
	chats    map[string][]*Message
	calls    []Call
	onChange func(domain.ChatKey, Call)
}

// TransportOption configures the Transport.
type TransportOption func(*Transport)

// WithOnChange registers a callback invoked after every successful call.
func WithOnChange(fn func(domain.ChatKey, Call)) TransportOption {
	return func(t *Transport) {
		t.onChange = fn
	}
}

// NewTransport creates an empty recording transport.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{chats: make(map[string][]*Message)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send appends a new message to the chat.
func (t *Transport) Send(ctx context.Context, msg *domain.NewMessage) (*domain.SentMessage, error) {
	t.mu.Lock()
	t.seq++
	id := strconv.Itoa(t.seq)
	m := &Message{ID: id, Text: msg.Text, Keyboard: msg.Keyboard.Clone(), Media: cloneMedia(msg.Media)}
	key := msg.Chat.String()
	t.chats[key] = append(t.chats[key], m)
	call := t.record(Call{Op: OpSend, Chat: msg.Chat, MessageID: id, Text: msg.Text, Keyboard: m.Keyboard, Media: m.Media})
	t.mu.Unlock()

	t.notify(msg.Chat, call)
	return sentMessage(m), nil
}

// EditText replaces text and controls of a message.
func (t *Transport) EditText(ctx context.Context, ref domain.MessageRef, msg *domain.NewMessage) (*domain.SentMessage, error) {
	t.mu.Lock()
	m, err := t.find(ref)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	m.Text = msg.Text
	m.Keyboard = msg.Keyboard.Clone()
	call := t.record(Call{Op: OpEditText, Chat: ref.Chat, MessageID: ref.MessageID, Text: m.Text, Keyboard: m.Keyboard, Media: m.Media})
	t.mu.Unlock()

	t.notify(ref.Chat, call)
	return sentMessage(m), nil
}

// EditControls replaces only the controls of a message.
func (t *Transport) EditControls(ctx context.Context, ref domain.MessageRef, keyboard domain.Keyboard) (*domain.SentMessage, error) {
	t.mu.Lock()
	m, err := t.find(ref)
	if err != nil {
		t.mu.Unlock()
		return nil, err
	}
	m.Keyboard = keyboard.Clone()
	call := t.record(Call{Op: OpEditControls, Chat: ref.Chat, MessageID: ref.MessageID, Keyboard: m.Keyboard})
	t.mu.Unlock()

	t.notify(ref.Chat, call)
	return sentMessage(m), nil
}

// Delete removes a message.
func (t *Transport) Delete(ctx context.Context, ref domain.MessageRef) error {
	t.mu.Lock()
	key := ref.Chat.String()
	msgs := t.chats[key]
	idx := -1
	for i, m := range msgs {
		if m.ID == ref.MessageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrMessageNotFound, ref.MessageID)
	}
	t.chats[key] = append(msgs[:idx:idx], msgs[idx+1:]...)
	call := t.record(Call{Op: OpDelete, Chat: ref.Chat, MessageID: ref.MessageID})
	t.mu.Unlock()

	t.notify(ref.Chat, call)
	return nil
}

// Messages returns a snapshot of the chat's messages in delivery order.
func (t *Transport) Messages(chat domain.ChatKey) []Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	msgs := t.chats[chat.String()]
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{ID: m.ID, Text: m.Text, Keyboard: m.Keyboard.Clone(), Media: cloneMedia(m.Media)}
	}
	return out
}

// Last returns the most recent message of the chat.
func (t *Transport) Last(chat domain.ChatKey) (Message, bool) {
	msgs := t.Messages(chat)
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Calls returns every recorded call in order.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// Reset forgets calls but keeps messages.
func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = nil
}

func (t *Transport) find(ref domain.MessageRef) (*Message, error) {
	for _, m := range t.chats[ref.Chat.String()] {
		if m.ID == ref.MessageID {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrMessageNotFound, ref.MessageID)
}

func (t *Transport) record(c Call) Call {
	t.calls = append(t.calls, c)
	return c
}

func (t *Transport) notify(chat domain.ChatKey, c Call) {
	if t.onChange != nil {
		t.onChange(chat, c)
	}
}

func sentMessage(m *Message) *domain.SentMessage {
	sent := &domain.SentMessage{MessageID: m.ID}
	if m.Media != nil {
		sent.MediaID = m.Media.FileID
		sent.MediaUniqueID = m.Media.UniqueID
	}
	return sent
}

func cloneMedia(m *domain.Media) *domain.Media {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
