package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/aretw0/chatdialog/internal/logging"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Manager orchestrates scoped access to conversation state.
type Manager struct {
	storage ports.Storage

	locker  ports.DistributedLocker // Optional locker, nil means the host serializes events
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables per-stack locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given storage.
func NewManager(storage ports.Storage, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Storage returns the underlying storage.
func (m *Manager) Storage() ports.Storage {
	return m.storage
}

// WithScope loads the stack addressed by key, runs fn and saves every change,
// whatever fn returns. Errors of fn and of the commit are joined.
func (m *Manager) WithScope(ctx context.Context, key domain.StackKey, fn func(context.Context, *Scope) error) (err error) {
	if !key.Valid() {
		return fmt.Errorf("%w: invalid stack key %q", domain.ErrIncorrectBackground, key)
	}

	if m.locker != nil {
		unlock, lockErr := m.locker.Lock(ctx, key.String(), m.lockTTL)
		if lockErr != nil {
			return fmt.Errorf("failed to acquire lock: %w", lockErr)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release lock (will expire via TTL)",
					"stack", key.String(),
					"err", err,
				)
			}
		}()
	}

	stack, err := m.storage.LoadStack(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load stack: %w", err)
	}
	scope := newScope(key, stack, m.storage)

	defer func() {
		if commitErr := scope.commit(ctx); commitErr != nil {
			m.logger.Error("Failed to save scope", "stack", key.String(), "err", commitErr)
			err = errors.Join(err, commitErr)
		}
	}()

	return fn(ctx, scope)
}

// Locate resolves the stack that owns intentID for an event sent by userID.
// Contexts carry their stack id; the default stack is addressed per user.
func (m *Manager) Locate(ctx context.Context, chat domain.ChatKey, userID, intentID string) (domain.StackKey, error) {
	c, err := m.storage.LoadContext(ctx, chat, intentID)
	if err != nil {
		return domain.StackKey{}, err
	}
	if c.StackID == domain.DefaultStackID {
		return domain.DefaultStackKey(chat, userID), nil
	}
	return domain.StackKey{Chat: chat, StackID: c.StackID}, nil
}
