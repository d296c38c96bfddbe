package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type attempt struct {
	at     time.Time
	weight int
}

// MemoryStore implements Store with a mutex-guarded in-process map.
// State is per-instance; multi-instance deployments should use RedisStore
// so all replicas share one budget.
type MemoryStore struct {
	mu          sync.Mutex
	attempts    map[string][]attempt
	lastCleanup time.Time

	cleanupEvery time.Duration
	retention    time.Duration
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the minimum interval between opportunistic
// cleanup passes. Cleanup runs inline during Count rather than on a
// background goroutine.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if interval > 0 {
			ms.cleanupEvery = interval
		}
	}
}

// WithRetention sets how long attempts are kept before cleanup drops them.
// Retention must cover the widest policy window in use.
func WithRetention(retention time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if retention > 0 {
			ms.retention = retention
		}
	}
}

// NewMemoryStore creates an in-memory attempt store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		attempts:     make(map[string][]attempt),
		lastCleanup:  time.Now(),
		cleanupEvery: 5 * time.Minute,
		retention:    time.Hour,
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

// Count sums attempt weights with timestamps strictly inside the trailing
// window and returns the oldest in-window timestamp.
func (ms *MemoryStore) Count(ctx context.Context, identifier string, window time.Duration) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.maybeCleanup()

	cutoff := time.Now().Add(-window)
	var (
		count  int
		oldest time.Time
	)
	for _, a := range ms.attempts[identifier] {
		if a.at.After(cutoff) {
			count += a.weight
			if oldest.IsZero() || a.at.Before(oldest) {
				oldest = a.at
			}
		}
	}
	return count, oldest, nil
}

// Record appends a unit-weight attempt at the current time.
func (ms *MemoryStore) Record(ctx context.Context, identifier string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.attempts[identifier] = append(ms.attempts[identifier], attempt{at: time.Now(), weight: 1})
	return nil
}

// maybeCleanup drops attempts older than the retention period and removes
// empty identifiers. Throttled so it does not run on every call.
// Caller must hold ms.mu.
func (ms *MemoryStore) maybeCleanup() {
	now := time.Now()
	if now.Sub(ms.lastCleanup) < ms.cleanupEvery {
		return
	}
	ms.lastCleanup = now

	cutoff := now.Add(-ms.retention)
	for key, as := range ms.attempts {
		kept := as[:0]
		for _, a := range as {
			if a.at.After(cutoff) {
				kept = append(kept, a)
			}
		}
		if len(kept) == 0 {
			delete(ms.attempts, key)
			continue
		}
		ms.attempts[key] = kept
	}
}
