package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/chatdialog/pkg/adapters/memory"
	"github.com/aretw0/chatdialog/pkg/domain"
	"github.com/aretw0/chatdialog/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chat = domain.ChatKey{ChatID: "chat-1"}

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) LoadStack(ctx context.Context, key domain.StackKey) (*domain.Stack, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.LoadStack(ctx, key)
}

// FailingStore fails every stack save.
type FailingStore struct {
	*memory.Store
}

var errDisk = errors.New("disk full")

func (s FailingStore) SaveStack(ctx context.Context, key domain.StackKey, stack *domain.Stack) error {
	return errDisk
}

func TestManager_WithScope_SavesChanges(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()
	key := domain.DefaultStackKey(chat, "u1")

	var intentID string
	err := mgr.WithScope(ctx, key, func(ctx context.Context, s *session.Scope) error {
		c, err := s.Stack().Push("menu:main", nil)
		if err != nil {
			return err
		}
		c.SetData("k", "v", domain.ScopeDialog)
		s.Put(c)
		intentID = c.IntentID
		return nil
	})
	require.NoError(t, err)

	stack, err := store.LoadStack(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{intentID}, stack.Intents)

	c, err := store.LoadContext(ctx, chat, intentID)
	require.NoError(t, err)
	assert.Equal(t, "v", c.GetData("k", nil, domain.ScopeDialog))

	loc, err := mgr.Locate(ctx, chat, "u1", intentID)
	require.NoError(t, err)
	assert.Equal(t, key, loc)
}

func TestManager_WithScope_SavesOnError(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()
	key := domain.StackKey{Chat: chat, StackID: "group"}
	boom := errors.New("handler failed")

	err := mgr.WithScope(ctx, key, func(ctx context.Context, s *session.Scope) error {
		c, _ := s.Stack().Push("menu:main", nil)
		s.Put(c)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stack, err := store.LoadStack(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, stack.Depth(), "changes are saved on error paths too")
}

func TestManager_WithScope_JoinsCommitErrors(t *testing.T) {
	mgr := session.NewManager(FailingStore{memory.NewStore()})
	boom := errors.New("handler failed")

	err := mgr.WithScope(context.Background(), domain.DefaultStackKey(chat, "u1"), func(ctx context.Context, s *session.Scope) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, errDisk)
}

func TestManager_WithScope_RemovesContexts(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()
	key := domain.DefaultStackKey(chat, "u1")

	var id string
	require.NoError(t, mgr.WithScope(ctx, key, func(ctx context.Context, s *session.Scope) error {
		c, err := s.Stack().Push("menu:main", nil)
		require.NoError(t, err)
		s.Put(c)
		id = c.IntentID
		return nil
	}))

	require.NoError(t, mgr.WithScope(ctx, key, func(ctx context.Context, s *session.Scope) error {
		c, err := s.Current(ctx)
		require.NoError(t, err)
		c.Clear()
		_, err = s.Stack().Pop()
		require.NoError(t, err)
		s.Remove(c.IntentID)

		_, err = s.Context(ctx, c.IntentID)
		assert.ErrorIs(t, err, domain.ErrUnknownIntent)
		_, err = s.Current(ctx)
		assert.ErrorIs(t, err, domain.ErrNoContext)
		return nil
	}))

	_, err := store.LoadContext(ctx, chat, id)
	assert.ErrorIs(t, err, domain.ErrUnknownIntent)
}

func TestManager_InvalidKey(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	err := mgr.WithScope(context.Background(), domain.StackKey{Chat: chat}, func(context.Context, *session.Scope) error {
		t.Fatal("must not run")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrIncorrectBackground)
}

func TestManager_Locking(t *testing.T) {
	store := SlowStore{memory.NewStore()}
	mgr := session.NewManager(store, session.WithLocker(session.NewLocalLocker()))
	ctx := context.Background()
	key := domain.StackKey{Chat: chat, StackID: "race"}

	// Read-modify-write without locking would lose pushes.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithScope(ctx, key, func(ctx context.Context, s *session.Scope) error {
				c, err := s.Stack().Push("menu:main", nil)
				if err != nil {
					return err
				}
				s.Put(c)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stack, err := store.LoadStack(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 10, stack.Depth())
}
