package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var _ ports.Storage = (*Store)(nil)

// farFuture is the index score of entries without expiration (2100-01-01).
const farFuture = 4102444800

// Store implements ports.Storage using Redis.
// Stacks and contexts are JSON documents; stack keys are indexed in a ZSET scored by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of stacks and contexts. Every save refreshes it.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "chatdialog:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client, e.g. to build a Locker sharing the connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) stackKey(key domain.StackKey) string {
	return s.prefix + "stack:" + key.String()
}

func (s *Store) contextKey(chat domain.ChatKey, intentID string) string {
	return s.prefix + "ctx:" + chat.String() + ":" + intentID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// LoadStack retrieves the stack or returns a new empty one.
func (s *Store) LoadStack(ctx context.Context, key domain.StackKey) (*domain.Stack, error) {
	val, err := s.client.Get(ctx, s.stackKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.NewStack(key.StackID), nil
		}
		return nil, fmt.Errorf("failed to get stack from redis: %w", err)
	}

	var stack domain.Stack
	if err := json.Unmarshal(val, &stack); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stack: %w", err)
	}
	if stack.Intents == nil {
		stack.Intents = []string{}
	}
	return &stack, nil
}

// SaveStack persists the stack and refreshes its index entry and the expiration of its contexts.
func (s *Store) SaveStack(ctx context.Context, key domain.StackKey, stack *domain.Stack) error {
	data, err := json.Marshal(stack)
	if err != nil {
		return fmt.Errorf("failed to marshal stack: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.stackKey(key), data, s.ttl)
	// Contexts live as long as the stack referencing them.
	if s.ttl > 0 {
		for _, id := range stack.Intents {
			pipe.Expire(ctx, s.contextKey(key.Chat, id), s.ttl)
		}
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: key.String(),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save stack to redis: %w", err)
	}
	return nil
}

// LoadContext retrieves a context.
func (s *Store) LoadContext(ctx context.Context, chat domain.ChatKey, intentID string) (*domain.Context, error) {
	val, err := s.client.Get(ctx, s.contextKey(chat, intentID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownIntent, intentID)
		}
		return nil, fmt.Errorf("failed to get context from redis: %w", err)
	}

	var c domain.Context
	if err := json.Unmarshal(val, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}
	if c.DialogData == nil {
		c.DialogData = make(map[string]any)
	}
	if c.WidgetData == nil {
		c.WidgetData = make(map[string]any)
	}
	return &c, nil
}

// SaveContext persists a context.
func (s *Store) SaveContext(ctx context.Context, chat domain.ChatKey, c *domain.Context) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	if err := s.client.Set(ctx, s.contextKey(chat, c.IntentID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save context to redis: %w", err)
	}
	return nil
}

// RemoveContext deletes a context.
func (s *Store) RemoveContext(ctx context.Context, chat domain.ChatKey, intentID string) error {
	return s.client.Del(ctx, s.contextKey(chat, intentID)).Err()
}

// Stacks lists the keys of live stacks, pruning expired index entries lazily.
func (s *Store) Stacks(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired stacks: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list stacks: %w", err)
	}
	return keys, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
