package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// allocationLockKey serialises every write to the slot store. Conflicts span
// classes (a room or trainer is shared), so one key covers all of them.
const allocationLockKey = "timetable:allocation"

const lockPollInterval = 50 * time.Millisecond

// Locker non-blocking named lock. *redis.Client implements it.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// ── in-process fallback ──

type localLocker struct {
	mu   sync.Mutex
	held map[string]time.Time // key → expiry
}

// NewLocalLocker returns a Locker for single-instance deployments without Redis.
func NewLocalLocker() Locker {
	return &localLocker{held: make(map[string]time.Time)}
}

func (l *localLocker) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if exp, ok := l.held[key]; ok && now.Before(exp) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)
	return true, nil
}

func (l *localLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
	return nil
}

// acquireLock polls locker until key is taken or wait elapses. The returned
// release func must be called once the guarded work is done.
func acquireLock(ctx context.Context, locker Locker, key string, ttl, wait time.Duration, logger *zap.Logger) (func(), error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := locker.Lock(ctx, key, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// the caller's context may already be cancelled
				if err := locker.Unlock(context.Background(), key); err != nil {
					logger.Warn("release allocation lock failed", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrAllocationBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
