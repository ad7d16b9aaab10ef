package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/render"
)

// Start pushes the dialog of group and shows its first window.
func (m *Manager) Start(ctx context.Context, group domain.StatesGroup, data map[string]any, mode domain.LaunchMode) error {
	d, err := m.engine.registry.Find(group)
	if err != nil {
		return err
	}
	return m.start(ctx, d, d.First().State, data, mode)
}

// StartAt pushes the dialog owning state and shows that window.
func (m *Manager) StartAt(ctx context.Context, state domain.State, data map[string]any, mode domain.LaunchMode) error {
	d, _, err := m.engine.registry.FindState(state)
	if err != nil {
		return err
	}
	return m.start(ctx, d, state, data, mode)
}

func (m *Manager) start(ctx context.Context, d *dialog.Dialog, state domain.State, data map[string]any, mode domain.LaunchMode) error {
	stack := m.scope.Stack()

	// 1. Exclusive dialogs lock the stack while they are on top
	if top, ok := stack.Current(); ok && top == stack.ExclusiveIntent {
		return fmt.Errorf("%w: cannot start %s", domain.ErrExclusiveStack, d.Group())
	}

	if !mode.Valid() {
		return fmt.Errorf("unknown launch mode %q", mode)
	}
	if mode == "" || mode == domain.LaunchStandard {
		mode = d.LaunchMode()
	}

	// 2. New contexts inherit access from the current context, else from the stack
	access := stack.AccessSettings
	current, err := m.scope.Current(ctx)
	switch {
	case err == nil:
		if current.AccessSettings != nil {
			access = current.AccessSettings
		}
	case errors.Is(err, domain.ErrNoContext):
	case errors.Is(err, domain.ErrUnknownIntent) && (mode == domain.LaunchRoot || mode == domain.LaunchExclusive):
		// A lost top context must not block resetting the stack.
		current = nil
	default:
		return err
	}
	access = access.Clone()

	// 3. Launch mode
	switch mode {
	case domain.LaunchRoot, domain.LaunchExclusive:
		if err := m.closeAll(ctx); err != nil {
			return err
		}
	case domain.LaunchSingleTop:
		if current != nil && domain.StatesGroup(current.State.Group()) == d.Group() {
			if err := m.pop(ctx, current); err != nil {
				return err
			}
			m.engine.emitDialogClose(ctx, current, m.scope.Stack().ID)
		}
	}

	// 4. Push
	c, err := stack.Push(state, data)
	if err != nil {
		return err
	}
	c.AccessSettings = access
	m.scope.Put(c)
	if mode == domain.LaunchExclusive {
		stack.ExclusiveIntent = c.IntentID
	}
	m.pending = true

	m.engine.logger.Debug("dialog started",
		"dialog", d.Group().String(),
		"intent", c.IntentID,
		"mode", string(mode),
		"depth", stack.Depth(),
	)
	m.engine.emitDialogStart(ctx, c, stack.ID, mode)

	return d.OnStart(ctx, c.StartData, m)
}

// Done finishes the active dialog and hands result to the dialog below it.
// When the stack becomes empty the controls of the last screen are removed.
func (m *Manager) Done(ctx context.Context, result any) error {
	c, d, err := m.current(ctx)
	if err != nil {
		return err
	}

	// 1. The child sees its own context while closing
	if err := d.OnClose(ctx, result, m); err != nil {
		return err
	}
	if err := m.pop(ctx, c); err != nil {
		return err
	}
	m.engine.emitDialogDone(ctx, c, m.scope.Stack().ID, result)

	// 2. Nothing left: the last screen must not offer stale controls
	stack := m.scope.Stack()
	if stack.Empty() {
		m.pending = false
		stripped, err := render.StripControls(ctx, m.engine.transport, stack.LastMessage)
		if err != nil {
			return err
		}
		stack.LastMessage = stripped
		return nil
	}

	// 3. Deliver the result to the parent, which is rendered at the end of the event
	parent, pd, err := m.current(ctx)
	if err != nil {
		return err
	}
	m.pending = true
	return pd.OnProcessResult(ctx, parent.StartData, result, m)
}

// Close drops the active dialog without a result and without rendering.
func (m *Manager) Close(ctx context.Context) error {
	c, err := m.scope.Current(ctx)
	if err != nil {
		return err
	}
	if err := m.pop(ctx, c); err != nil {
		return err
	}
	m.pending = false
	m.engine.emitDialogClose(ctx, c, m.scope.Stack().ID)
	return nil
}

// pop removes c from the top of the stack and clears it.
func (m *Manager) pop(ctx context.Context, c *domain.Context) error {
	id, err := m.scope.Stack().Pop()
	if err != nil {
		return err
	}
	if id != c.IntentID {
		return fmt.Errorf("%w: popped %s, expected %s", domain.ErrOutdatedIntent, id, c.IntentID)
	}
	c.Clear()
	m.scope.Remove(id)
	return nil
}

// closeAll pops every intent. Contexts already gone from storage are skipped.
func (m *Manager) closeAll(ctx context.Context) error {
	stack := m.scope.Stack()
	for !stack.Empty() {
		id, _ := stack.Current()
		c, err := m.scope.Context(ctx, id)
		if errors.Is(err, domain.ErrUnknownIntent) {
			if _, err := stack.Pop(); err != nil {
				return err
			}
			m.scope.Remove(id)
			continue
		}
		if err != nil {
			return err
		}
		if err := m.pop(ctx, c); err != nil {
			return err
		}
		m.engine.emitDialogClose(ctx, c, stack.ID)
	}
	return nil
}
