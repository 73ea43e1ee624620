package runlock

import (
	"context"
	"sync"
	"time"

	"github.com/oroshi/backoffice/internal/application/closing"
	"github.com/oroshi/backoffice/internal/domain/shared"
)

// MemoryLocker serializes closing runs within a single process. It is the
// locker for deployments without Redis and for tests.
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

// NewMemoryLocker creates a new MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held:  make(map[string]time.Time),
		clock: time.Now,
	}
}

// Acquire takes the lock for key unless an unexpired holder exists.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (closing.RunLock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if expiry, ok := l.held[key]; ok && now.Before(expiry) {
		return nil, shared.ErrRunInProgress
	}
	l.held[key] = now.Add(ttl)
	return &memoryLock{locker: l, key: key}, nil
}

func (l *MemoryLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
}

// Release frees the lock.
func (l *memoryLock) Release(ctx context.Context) error {
	l.locker.release(l.key)
	return nil
}

// Ensure MemoryLocker implements closing.RunLocker
var _ closing.RunLocker = (*MemoryLocker)(nil)
