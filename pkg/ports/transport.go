package ports

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// Transport delivers rendered screens to the chat channel.
// Edits and deletes return domain.ErrMessageNotFound when the target message no longer exists,
// in which case the renderer falls back to sending a new message.
type Transport interface {
	// Send delivers a new message and reports its transport id.
	Send(ctx context.Context, msg *domain.NewMessage) (*domain.SentMessage, error)

	// EditText replaces text and controls of an existing message.
	EditText(ctx context.Context, ref domain.MessageRef, msg *domain.NewMessage) (*domain.SentMessage, error)

	// EditControls replaces only the controls of an existing message. A nil keyboard removes them.
	EditControls(ctx context.Context, ref domain.MessageRef, keyboard domain.Keyboard) (*domain.SentMessage, error)

	// Delete removes an existing message.
	Delete(ctx context.Context, ref domain.MessageRef) error
}
