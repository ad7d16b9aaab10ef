package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
)

var _ ports.Storage = (*Store)(nil)

type contextKey struct {
	chat     string
	intentID string
}

// Store implements ports.Storage in memory.
// Safe for concurrent use.
type Store struct {
	stacks   map[string]*domain.Stack
	contexts map[contextKey]*domain.Context
	mu       sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		stacks:   make(map[string]*domain.Stack),
		contexts: make(map[contextKey]*domain.Context),
	}
}

// LoadStack returns a copy of the stored stack or a fresh one.
func (s *Store) LoadStack(ctx context.Context, key domain.StackKey) (*domain.Stack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stack, ok := s.stacks[key.String()]
	if !ok {
		return domain.NewStack(key.StackID), nil
	}
	// Copy on read so callers can't mutate store state directly by pointer
	return stack.Clone(), nil
}

// SaveStack persists a copy of the stack.
func (s *Store) SaveStack(ctx context.Context, key domain.StackKey, stack *domain.Stack) error {
	copied := stack.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stacks[key.String()] = copied
	return nil
}

// LoadContext returns a copy of the stored context.
func (s *Store) LoadContext(ctx context.Context, chat domain.ChatKey, intentID string) (*domain.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contexts[contextKey{chat.String(), intentID}]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownIntent, intentID)
	}
	return c.Clone(), nil
}

// SaveContext persists a copy of the context.
func (s *Store) SaveContext(ctx context.Context, chat domain.ChatKey, c *domain.Context) error {
	copied := c.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[contextKey{chat.String(), c.IntentID}] = copied
	return nil
}

// RemoveContext deletes the context.
func (s *Store) RemoveContext(ctx context.Context, chat domain.ChatKey, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, contextKey{chat.String(), intentID})
	return nil
}

// Stats reports how many stacks and contexts are held.
func (s *Store) Stats() (stacks, contexts int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stacks), len(s.contexts)
}
