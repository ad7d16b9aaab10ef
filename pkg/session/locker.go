package session

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/chatdialog/pkg/ports"
)

// lockEntry holds the lock token and the reference count.
type lockEntry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker serializes access per key inside one process.
// It uses reference counting to garbage collect unused locks.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

var _ ports.DistributedLocker = (*LocalLocker)(nil)

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*lockEntry)}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must call release(key) once done with the entry.
func (l *LocalLocker) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *LocalLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}

// Lock blocks until key is free or ctx is done. The ttl is ignored: a local lock
// lives exactly as long as its holder.
func (l *LocalLocker) Lock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	entry := l.acquire(key)
	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-entry.ch
			l.release(key)
		})
		return nil
	}, nil
}

// active returns the number of keys currently tracked.
func (l *LocalLocker) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
