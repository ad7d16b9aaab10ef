package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStorageContract runs a suite of tests to verify that a Storage implementation
// adheres to the defined interface contract.
func RunStorageContract(t *testing.T, storage Storage) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405.000000000")
	chat := domain.ChatKey{BotID: "contract", ChatID: "chat-" + suffix}

	t.Run("Load Missing Stack", func(t *testing.T) {
		key := domain.StackKey{Chat: chat, StackID: "missing"}
		stack, err := storage.LoadStack(ctx, key)
		require.NoError(t, err, "LoadStack on a missing key should create an empty stack")
		assert.Equal(t, "missing", stack.ID)
		assert.True(t, stack.Empty())
	})

	t.Run("Save and Load Stack", func(t *testing.T) {
		key := domain.DefaultStackKey(chat, "user-1")
		stack := domain.NewStack(domain.DefaultStackID)
		stack.Intents = []string{"a", "b"}
		stack.ExclusiveIntent = "b"
		stack.LastMessage = &domain.OldMessage{
			Chat:      chat,
			MessageID: "42",
			Text:      "hello",
			Keyboard:  domain.Keyboard{{{Text: "Next", CallbackData: "b\x1dnext"}}},
		}
		stack.AccessSettings = &domain.AccessSettings{UserIDs: []string{"user-1"}}

		require.NoError(t, storage.SaveStack(ctx, key, stack))

		loaded, err := storage.LoadStack(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, loaded.Intents)
		assert.Equal(t, "b", loaded.ExclusiveIntent)
		require.NotNil(t, loaded.LastMessage)
		assert.Equal(t, "42", loaded.LastMessage.MessageID)
		assert.True(t, stack.LastMessage.Keyboard.Equal(loaded.LastMessage.Keyboard))
		assert.True(t, loaded.AccessSettings.Allows("user-1"))
		assert.False(t, loaded.AccessSettings.Allows("user-2"))

		other, err := storage.LoadStack(ctx, domain.DefaultStackKey(chat, "user-2"))
		require.NoError(t, err)
		assert.True(t, other.Empty(), "default stacks are per user")
	})

	t.Run("Save and Load Context", func(t *testing.T) {
		intentID := "ctx-" + suffix
		c := domain.NewContext(intentID, "shared", "menu:main", map[string]any{"origin": "test"})
		c.SetData("name", "Ada", domain.ScopeDialog)
		c.SetData("notify", true, domain.ScopeWidget)

		require.NoError(t, storage.SaveContext(ctx, chat, c))

		loaded, err := storage.LoadContext(ctx, chat, intentID)
		require.NoError(t, err)
		assert.Equal(t, domain.State("menu:main"), loaded.State)
		assert.Equal(t, "shared", loaded.StackID)
		assert.Equal(t, "test", loaded.StartData["origin"])
		assert.Equal(t, "Ada", loaded.GetData("name", nil, domain.ScopeDialog))
		assert.Equal(t, true, loaded.GetData("notify", nil, domain.ScopeWidget))
	})

	t.Run("Load Unknown Context", func(t *testing.T) {
		_, err := storage.LoadContext(ctx, chat, "unknown-"+suffix)
		assert.ErrorIs(t, err, domain.ErrUnknownIntent)
	})

	t.Run("Remove Context", func(t *testing.T) {
		intentID := "rm-" + suffix
		require.NoError(t, storage.SaveContext(ctx, chat, domain.NewContext(intentID, "", "menu:main", nil)))

		require.NoError(t, storage.RemoveContext(ctx, chat, intentID))
		_, err := storage.LoadContext(ctx, chat, intentID)
		assert.ErrorIs(t, err, domain.ErrUnknownIntent, "LoadContext after RemoveContext should return ErrUnknownIntent")

		assert.NoError(t, storage.RemoveContext(ctx, chat, intentID), "removing twice is not an error")
	})

	t.Run("Chats Are Isolated", func(t *testing.T) {
		other := domain.ChatKey{BotID: "contract", ChatID: fmt.Sprintf("other-%s", suffix)}
		intentID := "iso-" + suffix
		require.NoError(t, storage.SaveContext(ctx, chat, domain.NewContext(intentID, "", "menu:main", nil)))

		_, err := storage.LoadContext(ctx, other, intentID)
		assert.ErrorIs(t, err, domain.ErrUnknownIntent)
	})
}
