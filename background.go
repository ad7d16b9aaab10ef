package chatdialog

import (
	"context"
	"fmt"

	"github.com/aretw0/chatdialog/pkg/domain"
)

// BgManager navigates a stack from outside of a user interaction, e.g. from a
// scheduled job or a webhook. Each call is a separate update event.
type BgManager struct {
	engine   *Engine
	origin   domain.Origin
	stackID  string
	intentID string
	showMode domain.ShowMode
}

// BgManager returns a background manager for the stack of origin identified by stackID.
// The default stack ("") needs a user; every stack needs a chat.
func (e *Engine) BgManager(origin domain.Origin, stackID string) (*BgManager, error) {
	if !origin.Chat.Valid() {
		return nil, fmt.Errorf("%w: chat is required", domain.ErrIncorrectBackground)
	}
	if stackID == domain.DefaultStackID && origin.UserID == "" {
		return nil, fmt.Errorf("%w: user is required for the default stack", domain.ErrIncorrectBackground)
	}
	return &BgManager{engine: e, origin: origin, stackID: stackID}, nil
}

// ForIntent returns a copy whose calls fail with domain.ErrOutdatedIntent
// unless intentID is still on top of the stack.
func (b *BgManager) ForIntent(intentID string) *BgManager {
	c := *b
	c.intentID = intentID
	return &c
}

// WithShowMode returns a copy rendering with mode.
func (b *BgManager) WithShowMode(mode domain.ShowMode) *BgManager {
	c := *b
	c.showMode = mode
	return &c
}

// Start launches the dialog of group.
func (b *BgManager) Start(ctx context.Context, group domain.StatesGroup, data map[string]any, mode domain.LaunchMode) error {
	d, err := b.engine.registry.Find(group)
	if err != nil {
		return err
	}
	return b.StartAt(ctx, d.First().State, data, mode)
}

// StartAt launches the dialog owning state, showing that window first.
func (b *BgManager) StartAt(ctx context.Context, state domain.State, data map[string]any, mode domain.LaunchMode) error {
	return b.send(ctx, &domain.UpdateEvent{Action: domain.ActionStart, State: state, Data: data, Mode: mode})
}

// SwitchTo shows another window of the active dialog.
func (b *BgManager) SwitchTo(ctx context.Context, state domain.State) error {
	return b.send(ctx, &domain.UpdateEvent{Action: domain.ActionSwitch, State: state})
}

// Update merges data into the dialog data of the active dialog and re-renders it.
func (b *BgManager) Update(ctx context.Context, data map[string]any) error {
	return b.send(ctx, &domain.UpdateEvent{Action: domain.ActionUpdate, Data: data})
}

// Done finishes the active dialog with result.
func (b *BgManager) Done(ctx context.Context, result any) error {
	return b.send(ctx, &domain.UpdateEvent{Action: domain.ActionDone, Result: result})
}

func (b *BgManager) send(ctx context.Context, ev *domain.UpdateEvent) error {
	ev.Origin = b.origin
	ev.StackID = b.stackID
	ev.IntentID = b.intentID
	ev.ShowMode = b.showMode
	return b.engine.Handle(ctx, ev)
}
