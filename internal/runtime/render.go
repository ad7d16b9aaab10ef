package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/render"
)

// run executes fn and renders the active window once if fn left a render pending.
func (m *Manager) run(ctx context.Context, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	if !m.pending {
		return nil
	}
	m.pending = false
	return m.render(ctx)
}

// render delivers the active window. An empty stack renders nothing.
func (m *Manager) render(ctx context.Context) error {
	c, d, err := m.current(ctx)
	if errors.Is(err, domain.ErrNoContext) {
		return nil
	}
	if err != nil {
		return err
	}

	msg, err := d.Render(ctx, m.scope.Chat(), m)
	if err != nil {
		return fmt.Errorf("render %s: %w", c.State, err)
	}
	msg.ShowMode = m.showMode

	stack := m.scope.Stack()
	started := m.engine.now()
	plan := render.Decide(stack.LastMessage, msg, m.fresh)
	last, err := render.Apply(ctx, m.engine.transport, stack.LastMessage, msg, plan)
	if err != nil {
		return fmt.Errorf("show %s: %w", c.State, err)
	}
	stack.LastMessage = last

	if plan.Op != render.OpNone {
		// Later renders of the same event edit the message just sent.
		m.fresh = false
		m.engine.emitWindowShow(ctx, c, string(plan.Op), m.engine.now().Sub(started))
	}
	return nil
}
