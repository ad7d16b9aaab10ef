package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	// Mask keys containing "password" or "ssn"
	secure := middleware.NewPIIMiddleware([]string{"password", "ssn"})(underlying)
	ctx := context.Background()

	c := domain.NewContext("i1", "", "signup:start", nil)
	c.SetData("username", "jdoe", domain.ScopeDialog)
	c.SetData("user_password", "secret123", domain.ScopeDialog)
	c.SetData("details", map[string]any{
		"address":    "123 St",
		"ssn_number": "999-99-9999",
	}, domain.ScopeDialog)

	require.NoError(t, secure.SaveContext(ctx, chat, c))
	assert.Equal(t, "secret123", c.GetData("user_password", nil, domain.ScopeDialog), "live context must not be modified")

	stored, err := underlying.LoadContext(ctx, chat, "i1")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", stored.DialogData["username"])
	assert.Equal(t, middleware.Mask, stored.DialogData["user_password"])

	details := stored.DialogData["details"].(map[string]any)
	assert.Equal(t, "123 St", details["address"])
	assert.Equal(t, middleware.Mask, details["ssn_number"])
}

func TestChain_Order(t *testing.T) {
	underlying := memory.NewStore()
	key := make([]byte, 32)
	storage := middleware.Chain(underlying,
		middleware.NewPIIMiddleware([]string{"password"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	c := domain.NewContext("i1", "", "signup:start", nil)
	c.SetData("password", "hunter2", domain.ScopeDialog)
	require.NoError(t, storage.SaveContext(ctx, chat, c))

	loaded, err := storage.LoadContext(ctx, chat, "i1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.GetData("password", nil, domain.ScopeDialog), "masking runs before encryption")
}
