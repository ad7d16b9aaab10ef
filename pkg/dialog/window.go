package dialog

import (
	"context"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/widget"
)

// Getter produces the data rendered by a window. It is called once per render.
type Getter func(ctx context.Context, m widget.Manager) (widget.Data, error)

// MessageHandler handles an inbound user message while its window is active.
type MessageHandler func(ctx context.Context, msg *domain.MessageEvent, m widget.Manager) error

// Window is one screen of a dialog.
type Window struct {
	State    domain.State
	Text     widget.Text
	Keyboard widget.Keyboard
	Media    widget.Media
	Getter   Getter
	// OnMessage receives text and media sent by the user while the window is shown.
	OnMessage MessageHandler

	ParseMode         string
	DisableWebPreview bool
}
