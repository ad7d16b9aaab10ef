package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
)

// Scope is the per-event view over one stack and the contexts it references.
// It is not safe for concurrent use.
type Scope struct {
	key     domain.StackKey
	stack   *domain.Stack
	storage ports.Storage

	contexts map[string]*domain.Context
	removed  map[string]struct{}
}

func newScope(key domain.StackKey, stack *domain.Stack, storage ports.Storage) *Scope {
	return &Scope{
		key:      key,
		stack:    stack,
		storage:  storage,
		contexts: make(map[string]*domain.Context),
		removed:  make(map[string]struct{}),
	}
}

// Key returns the address of the scoped stack.
func (s *Scope) Key() domain.StackKey {
	return s.key
}

// Chat returns the chat the scope belongs to.
func (s *Scope) Chat() domain.ChatKey {
	return s.key.Chat
}

// Stack returns the scoped stack. Mutations are persisted when the scope ends.
func (s *Scope) Stack() *domain.Stack {
	return s.stack
}

// Context returns the context of intentID, loading it on first access.
func (s *Scope) Context(ctx context.Context, intentID string) (*domain.Context, error) {
	if c, ok := s.contexts[intentID]; ok {
		return c, nil
	}
	if _, gone := s.removed[intentID]; gone {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownIntent, intentID)
	}
	c, err := s.storage.LoadContext(ctx, s.key.Chat, intentID)
	if err != nil {
		return nil, err
	}
	s.contexts[intentID] = c
	return c, nil
}

// Current returns the context of the active intent, or domain.ErrNoContext for an empty stack.
func (s *Scope) Current(ctx context.Context) (*domain.Context, error) {
	id, ok := s.stack.Current()
	if !ok {
		return nil, domain.ErrNoContext
	}
	return s.Context(ctx, id)
}

// Put tracks a freshly created context so it is saved with the scope.
func (s *Scope) Put(c *domain.Context) {
	delete(s.removed, c.IntentID)
	s.contexts[c.IntentID] = c
}

// Remove schedules the context of intentID for deletion.
func (s *Scope) Remove(intentID string) {
	delete(s.contexts, intentID)
	s.removed[intentID] = struct{}{}
}

// commit persists every loaded context, deletes removed ones and saves the stack.
// All operations are attempted; failures are joined.
func (s *Scope) commit(ctx context.Context) error {
	var errs []error
	for id := range s.removed {
		if err := s.storage.RemoveContext(ctx, s.key.Chat, id); err != nil {
			errs = append(errs, fmt.Errorf("remove context %s: %w", id, err))
		}
	}
	for id, c := range s.contexts {
		if err := s.storage.SaveContext(ctx, s.key.Chat, c); err != nil {
			errs = append(errs, fmt.Errorf("save context %s: %w", id, err))
		}
	}
	if err := s.storage.SaveStack(ctx, s.key, s.stack); err != nil {
		errs = append(errs, fmt.Errorf("save stack %s: %w", s.key, err))
	}
	return errors.Join(errs...)
}
