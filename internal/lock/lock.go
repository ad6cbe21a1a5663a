// Package lock provides the single-writer-per-record discipline the
// scheduler needs: a per-request lock held across one read-decide-commit
// sequence. The local locker covers a single process; the Redis locker
// covers overlapping scheduler instances (stacked cron runs).
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrHeld is returned when another holder owns the lock. The scheduler
// skips the request; the conflicting run is already handling it.
var ErrHeld = errors.New("lock is held by another owner")

// Locker serializes work per request id. Acquire returns a release func on
// success and ErrHeld when another holder owns the id.
type Locker interface {
	Acquire(ctx context.Context, id string) (release func(), err error)
}

// LocalLocker serializes per-id work within one process
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// Acquire takes the per-id lock without blocking
func (l *LocalLocker) Acquire(_ context.Context, id string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[id]; taken {
		return nil, ErrHeld
	}
	l.held[id] = struct{}{}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, id)
	}, nil
}
