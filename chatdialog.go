package chatdialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/chatdialog/internal/logging"
	"github.com/aretw0/chatdialog/internal/runtime"
	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/dialog"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/input"
	"github.com/aretw0/chatdialog/pkg/persistence/middleware"
	"github.com/aretw0/chatdialog/pkg/ports"
	"github.com/aretw0/chatdialog/pkg/session"
)

// Engine is the high-level entry point of the library.
// It wraps the internal runtime and owns the session manager.
type Engine struct {
	runtime   *runtime.Engine
	registry  *dialog.Registry
	storage   ports.Storage
	sessions  *session.Manager
	transport ports.Transport
	sanitizer *input.Sanitizer

	locker      ports.DistributedLocker
	lockTTL     time.Duration
	middlewares []middleware.Middleware
	hooks       domain.LifecycleHooks
	idgen       domain.IDGenerator
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStorage sets where stacks and contexts are persisted. Defaults to memory.
func WithStorage(s ports.Storage) Option {
	return func(e *Engine) {
		e.storage = s
	}
}

// WithStorageMiddleware wraps the storage, first middleware outermost.
func WithStorageMiddleware(mws ...middleware.Middleware) Option {
	return func(e *Engine) {
		e.middlewares = append(e.middlewares, mws...)
	}
}

// WithLocker serializes events per stack. Without it the host must serialize them.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLockTTL bounds how long one event may hold the stack lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithIDGenerator overrides how intent ids are generated.
func WithIDGenerator(gen domain.IDGenerator) Option {
	return func(e *Engine) {
		e.idgen = gen
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSanitizer replaces the default input sanitizer applied to user messages.
func WithSanitizer(s *input.Sanitizer) Option {
	return func(e *Engine) {
		e.sanitizer = s
	}
}

// New creates an engine dispatching events to the dialogs of registry and
// delivering screens through transport.
func New(registry *dialog.Registry, transport ports.Transport, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}

	eng := &Engine{
		registry:  registry,
		transport: transport,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.storage == nil {
		eng.storage = memory.NewStore()
	}
	if eng.sanitizer == nil {
		eng.sanitizer = input.NewSanitizer()
	}
	eng.storage = middleware.Chain(eng.storage, eng.middlewares...)

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	if eng.lockTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithLockTTL(eng.lockTTL))
	}
	eng.sessions = session.NewManager(eng.storage, sessionOpts...)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	if eng.idgen != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithIDGenerator(eng.idgen))
	}
	eng.runtime = runtime.NewEngine(registry, eng.sessions, transport, runtimeOpts...)

	return eng, nil
}

// Handle processes one inbound event: a user message, a button press or a background update.
func (e *Engine) Handle(ctx context.Context, ev domain.Event) error {
	if msg, ok := ev.(*domain.MessageEvent); ok {
		text, err := e.sanitizer.Sanitize(msg.Text)
		if err != nil {
			return fmt.Errorf("invalid message: %w", err)
		}
		if text != msg.Text {
			clean := *msg
			clean.Text = text
			ev = &clean
		}
	}
	return e.runtime.Handle(ctx, ev)
}

// Start launches the dialog of group on the default stack of origin.
func (e *Engine) Start(ctx context.Context, origin domain.Origin, group domain.StatesGroup, data map[string]any, mode domain.LaunchMode) error {
	bg, err := e.BgManager(origin, domain.DefaultStackID)
	if err != nil {
		return err
	}
	return bg.Start(ctx, group, data, mode)
}

// Stack returns a copy of the stack addressed by key.
func (e *Engine) Stack(ctx context.Context, key domain.StackKey) (*domain.Stack, error) {
	return e.storage.LoadStack(ctx, key)
}

// Registry returns the dialogs known to the engine.
func (e *Engine) Registry() *dialog.Registry {
	return e.registry
}

// Storage returns the storage, wrapped by every configured middleware.
func (e *Engine) Storage() ports.Storage {
	return e.storage
}

// Transport returns the transport screens are delivered through.
func (e *Engine) Transport() ports.Transport {
	return e.transport
}

// IsExpired reports whether err was caused by an interaction with a dialog that is gone,
// typically a press on the controls of an old screen.
func IsExpired(err error) bool {
	return runtime.IsExpired(err)
}

// IsNoDialog reports whether err means the user has no active dialog.
func IsNoDialog(err error) bool {
	return errors.Is(err, domain.ErrNoContext)
}
