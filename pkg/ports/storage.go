package ports

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// Storage defines the interface for persisting per-conversation navigation state.
// Stacks and contexts are stored independently: a stack only references contexts by intent id.
type Storage interface {
	// LoadStack retrieves the stack addressed by key.
	// A missing stack is not an error: a new empty stack with the key's id is returned.
	LoadStack(ctx context.Context, key domain.StackKey) (*domain.Stack, error)

	// SaveStack persists the stack under key.
	SaveStack(ctx context.Context, key domain.StackKey, stack *domain.Stack) error

	// LoadContext retrieves the context of intentID in chat.
	// Returns domain.ErrUnknownIntent if it does not exist.
	LoadContext(ctx context.Context, chat domain.ChatKey, intentID string) (*domain.Context, error)

	// SaveContext persists c under (chat, c.IntentID).
	SaveContext(ctx context.Context, chat domain.ChatKey, c *domain.Context) error

	// RemoveContext deletes the context of intentID. Removing a missing context is not an error.
	RemoveContext(ctx context.Context, chat domain.ChatKey, intentID string) error
}
