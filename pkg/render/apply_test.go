package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chat = domain.ChatKey{ChatID: "c1"}

func show(t *testing.T, tr *memory.Transport, old *domain.OldMessage, msg *domain.NewMessage, fresh bool) *domain.OldMessage {
	t.Helper()
	next, err := render.Apply(context.Background(), tr, old, msg, render.Decide(old, msg, fresh))
	require.NoError(t, err)
	return next
}

func TestApply_SendThenEdit(t *testing.T) {
	tr := memory.NewTransport()
	kb := domain.Keyboard{{{Text: "Go", CallbackData: "go"}}}

	old := show(t, tr, nil, &domain.NewMessage{Chat: chat, Text: "one", Keyboard: kb}, false)
	require.NotNil(t, old)
	assert.Equal(t, "1", old.MessageID)

	old = show(t, tr, old, &domain.NewMessage{Chat: chat, Text: "two", Keyboard: kb}, false)
	assert.Equal(t, "1", old.MessageID, "edit keeps the message id")
	assert.Equal(t, "two", old.Text)

	old = show(t, tr, old, &domain.NewMessage{Chat: chat, Text: "two"}, false)
	assert.False(t, old.HasKeyboard())

	ops := []memory.Operation{}
	for _, c := range tr.Calls() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []memory.Operation{memory.OpSend, memory.OpEditText, memory.OpEditControls}, ops)
	assert.Len(t, tr.Messages(chat), 1)
}

func TestApply_FreshMessageStripsOldControls(t *testing.T) {
	tr := memory.NewTransport()
	kb := domain.Keyboard{{{Text: "Go", CallbackData: "go"}}}

	first := show(t, tr, nil, &domain.NewMessage{Chat: chat, Text: "one", Keyboard: kb}, false)
	second := show(t, tr, first, &domain.NewMessage{Chat: chat, Text: "one", Keyboard: kb}, true)

	assert.NotEqual(t, first.MessageID, second.MessageID)
	msgs := tr.Messages(chat)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].Keyboard.Empty(), "stale controls are removed")
	assert.Equal(t, kb, msgs[1].Keyboard)
}

func TestApply_DeleteAndSend(t *testing.T) {
	tr := memory.NewTransport()
	first := show(t, tr, nil, &domain.NewMessage{Chat: chat, Text: "one"}, false)
	second := show(t, tr, first, &domain.NewMessage{Chat: chat, Text: "two", ShowMode: domain.ShowDeleteAndSend}, false)

	msgs := tr.Messages(chat)
	require.Len(t, msgs, 1)
	assert.Equal(t, second.MessageID, msgs[0].ID)
}

func TestApply_EditFallsBackToSend(t *testing.T) {
	tr := memory.NewTransport()
	gone := &domain.OldMessage{Chat: chat, MessageID: "404", Text: "old"}

	next := show(t, tr, gone, &domain.NewMessage{Chat: chat, Text: "new"}, false)
	assert.Equal(t, "1", next.MessageID)
	assert.Len(t, tr.Messages(chat), 1)

	gone = &domain.OldMessage{Chat: chat, MessageID: "405", Text: "same", Keyboard: domain.Keyboard{{{Text: "x", CallbackData: "x"}}}}
	next = show(t, tr, gone, &domain.NewMessage{Chat: chat, Text: "same"}, false)
	assert.Equal(t, "2", next.MessageID)
}

func TestApply_NoneKeepsOld(t *testing.T) {
	tr := memory.NewTransport()
	old := &domain.OldMessage{Chat: chat, MessageID: "7", Text: "x"}

	next, err := render.Apply(context.Background(), tr, old, &domain.NewMessage{Chat: chat, Text: "x"}, render.Plan{Op: render.OpNone})
	require.NoError(t, err)
	assert.Same(t, old, next)
	assert.Empty(t, tr.Calls())
}

type failingTransport struct {
	*memory.Transport
}

var errOffline = errors.New("offline")

func (failingTransport) EditText(context.Context, domain.MessageRef, *domain.NewMessage) (*domain.SentMessage, error) {
	return nil, errOffline
}

func TestApply_PropagatesTransportErrors(t *testing.T) {
	tr := failingTransport{memory.NewTransport()}
	old := &domain.OldMessage{Chat: chat, MessageID: "1", Text: "a"}

	_, err := render.Apply(context.Background(), tr, old, &domain.NewMessage{Chat: chat, Text: "b"}, render.Plan{Op: render.OpEditText})
	assert.ErrorIs(t, err, errOffline)

	_, err = render.Apply(context.Background(), tr, old, &domain.NewMessage{Chat: chat}, render.Plan{Op: "teleport"})
	assert.Error(t, err)
}

func TestStripControls(t *testing.T) {
	tr := memory.NewTransport()
	kb := domain.Keyboard{{{Text: "Go", CallbackData: "go"}}}
	old := show(t, tr, nil, &domain.NewMessage{Chat: chat, Text: "one", Keyboard: kb}, false)

	stripped, err := render.StripControls(context.Background(), tr, old)
	require.NoError(t, err)
	assert.False(t, stripped.HasKeyboard())
	assert.True(t, tr.Messages(chat)[0].Keyboard.Empty())

	again, err := render.StripControls(context.Background(), tr, stripped)
	require.NoError(t, err)
	assert.Same(t, stripped, again, "nothing to strip")

	gone, err := render.StripControls(context.Background(), tr, &domain.OldMessage{Chat: chat, MessageID: "404", Keyboard: kb})
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestApply_RemembersMediaIDs(t *testing.T) {
	tr := memory.NewTransport()
	media := &domain.Media{Type: domain.MediaPhoto, URL: "https://img/1.png", FileID: "f1", UniqueID: "u1"}

	old := show(t, tr, nil, &domain.NewMessage{Chat: chat, Text: "pic", Media: media}, false)
	require.NotNil(t, old.Media)
	assert.Equal(t, "f1", old.Media.FileID)
	assert.Equal(t, "u1", old.Media.UniqueID)
}
