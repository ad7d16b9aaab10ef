package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/chatdialog/internal/logging"
	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
	"github.com/aretw0/chatdialog/pkg/session"
)

// Engine dispatches events to dialogs.
type Engine struct {
	registry  *dialog.Registry
	sessions  *session.Manager
	transport ports.Transport

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	idgen  domain.IDGenerator
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDGenerator overrides the intent id generator of every stack.
func WithIDGenerator(gen domain.IDGenerator) EngineOption {
	return func(e *Engine) {
		e.idgen = gen
	}
}

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine.
func NewEngine(registry *dialog.Registry, sessions *session.Manager, transport ports.Transport, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:  registry,
		sessions:  sessions,
		transport: transport,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the dialogs known to the engine.
func (e *Engine) Registry() *dialog.Registry {
	return e.registry
}

// Handle processes one inbound event.
// Errors are returned unchanged after the OnEventError hook ran.
func (e *Engine) Handle(ctx context.Context, ev domain.Event) (err error) {
	defer func() {
		if err != nil {
			e.emitEventError(ctx, ev, err)
		}
	}()

	switch ev := ev.(type) {
	case *domain.MessageEvent:
		return e.handleMessage(ctx, ev)
	case *domain.CallbackEvent:
		return e.handleCallback(ctx, ev)
	case *domain.UpdateEvent:
		return e.handleUpdate(ctx, ev)
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
}

// handleMessage passes user text to the window on top of the user's default stack.
func (e *Engine) handleMessage(ctx context.Context, ev *domain.MessageEvent) error {
	key := domain.DefaultStackKey(ev.Chat, ev.UserID)
	return e.sessions.WithScope(ctx, key, func(ctx context.Context, scope *session.Scope) error {
		stack := scope.Stack()
		if stack.Empty() {
			return domain.ErrNoContext
		}

		// Album items after the first one edit the screen instead of stacking new ones.
		fresh := true
		if ev.MediaGroupID != "" {
			fresh = ev.MediaGroupID != stack.LastIncomeMediaGroupID
			stack.LastIncomeMediaGroupID = ev.MediaGroupID
		}

		m := e.newManager(ctx, scope, ev, fresh)
		return m.run(ctx, func() error {
			if err := m.checkAccess(ctx, ev.UserID); err != nil {
				return err
			}
			d, err := m.currentDialog(ctx)
			if err != nil {
				return err
			}
			handled, err := d.ProcessMessage(ctx, ev, m)
			if err != nil {
				return err
			}
			if !handled {
				e.logger.Debug("message not handled", "stack", scope.Key().String())
				return nil
			}
			m.pending = true
			return nil
		})
	})
}

// handleCallback routes a button press to the intent encoded in its payload.
func (e *Engine) handleCallback(ctx context.Context, ev *domain.CallbackEvent) error {
	intentID, payload, ok := dialog.DecodeCallback(ev.Data)
	if !ok {
		return fmt.Errorf("%w: callback %q carries no intent", domain.ErrUnknownIntent, ev.Data)
	}
	key, err := e.sessions.Locate(ctx, ev.Chat, ev.UserID, intentID)
	if err != nil {
		return err
	}

	return e.sessions.WithScope(ctx, key, func(ctx context.Context, scope *session.Scope) error {
		stack := scope.Stack()
		if !stack.Contains(intentID) {
			return fmt.Errorf("%w: %s", domain.ErrUnknownIntent, intentID)
		}
		if top, _ := stack.Current(); top != intentID {
			return fmt.Errorf("%w: %s is not on top", domain.ErrOutdatedIntent, intentID)
		}

		m := e.newManager(ctx, scope, ev, false)
		return m.run(ctx, func() error {
			if err := m.checkAccess(ctx, ev.UserID); err != nil {
				return err
			}
			d, err := m.currentDialog(ctx)
			if err != nil {
				return err
			}
			m.pending = true
			consumed, err := d.ProcessCallback(ctx, ev, payload, m)
			if err != nil {
				return err
			}
			if !consumed {
				e.logger.Debug("callback not consumed", "intent", intentID, "payload", payload)
			}
			return nil
		})
	})
}

// handleUpdate applies navigation requested outside of a user interaction.
func (e *Engine) handleUpdate(ctx context.Context, ev *domain.UpdateEvent) error {
	key := domain.StackKey{Chat: ev.Chat, StackID: ev.StackID}
	if ev.StackID == domain.DefaultStackID {
		key.UserID = ev.UserID
	}

	return e.sessions.WithScope(ctx, key, func(ctx context.Context, scope *session.Scope) error {
		if ev.IntentID != "" {
			if top, ok := scope.Stack().Current(); !ok || top != ev.IntentID {
				return fmt.Errorf("%w: %s is not on top", domain.ErrOutdatedIntent, ev.IntentID)
			}
		}

		m := e.newManager(ctx, scope, ev, false)
		if ev.ShowMode != "" {
			m.showMode = ev.ShowMode
		}
		return m.run(ctx, func() error {
			switch ev.Action {
			case domain.ActionStart:
				return m.StartAt(ctx, ev.State, ev.Data, ev.Mode)
			case domain.ActionSwitch:
				return m.SwitchTo(ctx, ev.State)
			case domain.ActionUpdate:
				return m.Update(ctx, ev.Data)
			case domain.ActionDone:
				return m.Done(ctx, ev.Result)
			default:
				return fmt.Errorf("unknown update action %q", ev.Action)
			}
		})
	})
}

func (e *Engine) newManager(ctx context.Context, scope *session.Scope, ev domain.Event, fresh bool) *Manager {
	if e.idgen != nil {
		scope.Stack().SetIDGenerator(e.idgen)
	}
	return &Manager{
		engine:   e,
		base:     ctx,
		scope:    scope,
		event:    ev,
		fresh:    fresh,
		showMode: domain.ShowAuto,
	}
}

// IsExpired reports whether err means the user interacted with a dialog that no longer exists.
func IsExpired(err error) bool {
	return errors.Is(err, domain.ErrUnknownIntent) || errors.Is(err, domain.ErrOutdatedIntent)
}
