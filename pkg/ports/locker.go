package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// Hosts that cannot serialize events per conversation plug one into the session manager.
type DistributedLocker interface {
	// Lock acquires the lock for key (a rendered domain.StackKey).
	// It blocks until the lock is acquired or the context is canceled.
	// The returned UnlockFunc must be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
