package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/session"
	"github.com/aretw0/chatdialog/pkg/widget"
)

var _ widget.Manager = (*Manager)(nil)

// Manager is the navigation surface of one event. It is not safe for concurrent use
// and must not outlive the event it was created for.
type Manager struct {
	engine *Engine
	// base is the event context, used by accessors that take no context.
	base  context.Context
	scope *session.Scope
	event domain.Event

	fresh    bool
	showMode domain.ShowMode
	pending  bool
}

// Context returns the context of the active intent.
func (m *Manager) Context() (*domain.Context, error) {
	return m.scope.Current(m.base)
}

// Event returns the event being processed.
func (m *Manager) Event() domain.Event {
	return m.event
}

// Stack returns the stack the event operates on.
func (m *Manager) Stack() *domain.Stack {
	return m.scope.Stack()
}

// SetShowMode overrides the show mode for the rest of the event.
func (m *Manager) SetShowMode(mode domain.ShowMode) {
	m.showMode = mode
}

// SwitchTo shows another window of the active dialog.
func (m *Manager) SwitchTo(ctx context.Context, state domain.State) error {
	c, d, err := m.current(ctx)
	if err != nil {
		return err
	}
	if state.Group() != c.State.Group() {
		return fmt.Errorf("%w: %s is not part of %s", domain.ErrUnregisteredWindow, state, d.Group())
	}
	if _, err := d.Window(state); err != nil {
		return err
	}
	c.State = state
	m.pending = true
	return nil
}

// Next shows the window declared after the active one.
func (m *Manager) Next(ctx context.Context) error {
	return m.step(ctx, (*dialog.Dialog).Next)
}

// Back shows the window declared before the active one.
func (m *Manager) Back(ctx context.Context) error {
	return m.step(ctx, (*dialog.Dialog).Prev)
}

func (m *Manager) step(ctx context.Context, move func(*dialog.Dialog, domain.State) (*dialog.Window, error)) error {
	c, d, err := m.current(ctx)
	if err != nil {
		return err
	}
	w, err := move(d, c.State)
	if err != nil {
		return err
	}
	c.State = w.State
	m.pending = true
	return nil
}

// Update merges data into the dialog data of the active context.
func (m *Manager) Update(ctx context.Context, data map[string]any) error {
	c, err := m.scope.Current(ctx)
	if err != nil {
		return err
	}
	for k, v := range data {
		c.SetData(k, v, domain.ScopeDialog)
	}
	m.pending = true
	return nil
}

// Show renders the active window now.
func (m *Manager) Show(ctx context.Context) error {
	m.pending = false
	return m.render(ctx)
}

// checkAccess rejects users outside the access settings of a shared stack
// or of the active context.
func (m *Manager) checkAccess(ctx context.Context, userID string) error {
	stack := m.scope.Stack()
	if !stack.Default() && !stack.AccessSettings.Allows(userID) {
		return fmt.Errorf("%w: user %s on stack %s", domain.ErrAccessDenied, userID, stack.ID)
	}
	c, err := m.scope.Current(ctx)
	if err != nil {
		return err
	}
	if !c.AccessSettings.Allows(userID) {
		return fmt.Errorf("%w: user %s on intent %s", domain.ErrAccessDenied, userID, c.IntentID)
	}
	return nil
}

func (m *Manager) current(ctx context.Context) (*domain.Context, *dialog.Dialog, error) {
	c, err := m.scope.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	d, err := m.engine.registry.Find(domain.StatesGroup(c.State.Group()))
	if err != nil {
		return nil, nil, err
	}
	return c, d, nil
}

func (m *Manager) currentDialog(ctx context.Context) (*dialog.Dialog, error) {
	_, d, err := m.current(ctx)
	return d, err
}
