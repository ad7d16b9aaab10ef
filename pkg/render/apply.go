package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
)

// Apply executes plan and returns the message to remember on the stack.
// Edits of a message that no longer exists fall back to sending a new one.
func Apply(ctx context.Context, t ports.Transport, old *domain.OldMessage, msg *domain.NewMessage, plan Plan) (*domain.OldMessage, error) {
	switch plan.Op {
	case OpNone:
		return old, nil

	case OpSend:
		if plan.StripOld && old != nil {
			if _, err := t.EditControls(ctx, old.Ref(), nil); ignoreNotFound(err) != nil {
				return nil, fmt.Errorf("strip controls of %s: %w", old.MessageID, err)
			}
		}
		return send(ctx, t, msg)

	case OpDeleteAndSend:
		if old != nil {
			if err := t.Delete(ctx, old.Ref()); ignoreNotFound(err) != nil {
				return nil, fmt.Errorf("delete %s: %w", old.MessageID, err)
			}
		}
		return send(ctx, t, msg)

	case OpEditText:
		sent, err := t.EditText(ctx, old.Ref(), msg)
		if errors.Is(err, domain.ErrMessageNotFound) {
			return send(ctx, t, msg)
		}
		if err != nil {
			return nil, fmt.Errorf("edit text of %s: %w", old.MessageID, err)
		}
		return remember(msg, sent, old), nil

	case OpEditControls:
		sent, err := t.EditControls(ctx, old.Ref(), msg.Keyboard)
		if errors.Is(err, domain.ErrMessageNotFound) {
			return send(ctx, t, msg)
		}
		if err != nil {
			return nil, fmt.Errorf("edit controls of %s: %w", old.MessageID, err)
		}
		return remember(msg, sent, old), nil

	default:
		return nil, fmt.Errorf("unknown render operation %q", plan.Op)
	}
}

// StripControls removes the keyboard of old and returns the updated copy.
// A message that no longer exists is forgotten.
func StripControls(ctx context.Context, t ports.Transport, old *domain.OldMessage) (*domain.OldMessage, error) {
	if !old.HasKeyboard() {
		return old, nil
	}
	_, err := t.EditControls(ctx, old.Ref(), nil)
	if errors.Is(err, domain.ErrMessageNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("strip controls of %s: %w", old.MessageID, err)
	}
	next := old.Clone()
	next.Keyboard = nil
	return next, nil
}

func send(ctx context.Context, t ports.Transport, msg *domain.NewMessage) (*domain.OldMessage, error) {
	sent, err := t.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	return remember(msg, sent, nil), nil
}

// remember builds the stored copy of msg. Media ids reported by the transport win,
// otherwise ids already known for the same attachment are kept.
func remember(msg *domain.NewMessage, sent *domain.SentMessage, prev *domain.OldMessage) *domain.OldMessage {
	out := &domain.OldMessage{
		Chat:     msg.Chat,
		Text:     msg.Text,
		Keyboard: msg.Keyboard.Clone(),
	}
	if sent != nil {
		out.MessageID = sent.MessageID
	}
	if out.MessageID == "" && prev != nil {
		out.MessageID = prev.MessageID
	}
	if msg.Media != nil {
		media := *msg.Media
		if sent != nil && sent.MediaID != "" {
			media.FileID = sent.MediaID
			media.UniqueID = sent.MediaUniqueID
		} else if prev != nil && prev.Media != nil && prev.Media.Same(msg.Media) {
			media.FileID = prev.Media.FileID
			media.UniqueID = prev.Media.UniqueID
		}
		out.Media = &media
	}
	return out
}

func ignoreNotFound(err error) error {
	if errors.Is(err, domain.ErrMessageNotFound) {
		return nil
	}
	return err
}
