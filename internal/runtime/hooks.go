package runtime

import (
	"context"
	"time"

	"github.com/aretw0/chatdialog/pkg/domain"
)

func (e *Engine) dialogEvent(c *domain.Context, stackID string) *domain.DialogEvent {
	return &domain.DialogEvent{
		Timestamp: e.now(),
		IntentID:  c.IntentID,
		StackID:   stackID,
		Dialog:    c.State.Group(),
		State:     c.State,
	}
}

func (e *Engine) emitDialogStart(ctx context.Context, c *domain.Context, stackID string, mode domain.LaunchMode) {
	if e.hooks.OnDialogStart == nil {
		return
	}
	ev := e.dialogEvent(c, stackID)
	ev.Mode = mode
	e.hooks.OnDialogStart(ctx, ev)
}

func (e *Engine) emitDialogDone(ctx context.Context, c *domain.Context, stackID string, result any) {
	if e.hooks.OnDialogDone == nil {
		return
	}
	ev := e.dialogEvent(c, stackID)
	ev.Result = result
	e.hooks.OnDialogDone(ctx, ev)
}

func (e *Engine) emitDialogClose(ctx context.Context, c *domain.Context, stackID string) {
	if e.hooks.OnDialogClose == nil {
		return
	}
	e.hooks.OnDialogClose(ctx, e.dialogEvent(c, stackID))
}

func (e *Engine) emitWindowShow(ctx context.Context, c *domain.Context, op string, took time.Duration) {
	if e.hooks.OnWindowShow == nil {
		return
	}
	e.hooks.OnWindowShow(ctx, &domain.WindowEvent{
		Timestamp: e.now(),
		IntentID:  c.IntentID,
		State:     c.State,
		Operation: op,
		Duration:  took,
	})
}

func (e *Engine) emitEventError(ctx context.Context, ev domain.Event, err error) {
	kind := "unknown"
	if ev != nil {
		kind = string(ev.Kind())
	}
	e.logger.Debug("event failed", "kind", kind, "err", err)
	if e.hooks.OnEventError != nil {
		e.hooks.OnEventError(ctx, ev, err)
	}
}
