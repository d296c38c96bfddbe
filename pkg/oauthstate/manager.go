package oauthstate

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// Manager issues and consumes one-time CSRF states.
type Manager interface {
	Create(ctx context.Context) (string, error)
	ValidateAndConsume(ctx context.Context, state string) (bool, error)
	Sweep(ctx context.Context) (int, error)
}

type stateEntry struct {
	createdAt time.Time
	consumed  bool
}

// MemoryManager keeps the state table in a mutex-guarded in-process map.
type MemoryManager struct {
	mu        sync.Mutex
	states    map[string]stateEntry
	lastSweep time.Time

	ttl        time.Duration
	sweepEvery time.Duration
}

// MemoryOption configures a MemoryManager.
type MemoryOption func(*MemoryManager)

// WithTTL sets the state expiry window. Default is 30 minutes.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *MemoryManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSweepInterval sets the minimum interval between opportunistic
// sweeps. Sweeping runs inline during Create rather than on a goroutine.
func WithSweepInterval(interval time.Duration) MemoryOption {
	return func(m *MemoryManager) {
		if interval > 0 {
			m.sweepEvery = interval
		}
	}
}

// NewMemoryManager creates an in-process state manager.
func NewMemoryManager(opts ...MemoryOption) *MemoryManager {
	m := &MemoryManager{
		states:     make(map[string]stateEntry),
		lastSweep:  time.Now(),
		ttl:        30 * time.Minute,
		sweepEvery: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create registers and returns a fresh URL-safe random state.
func (m *MemoryManager) Create(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.maybeSweep()
	m.states[state] = stateEntry{createdAt: time.Now()}
	return state, nil
}

// ValidateAndConsume atomically checks and marks the state. It returns
// false for unknown, already consumed, or expired states. Only the first
// caller can ever observe true for a given state.
func (m *MemoryManager) ValidateAndConsume(ctx context.Context, state string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.states[state]
	if !ok || entry.consumed {
		return false, nil
	}
	if time.Since(entry.createdAt) > m.ttl {
		delete(m.states, state)
		return false, nil
	}

	entry.consumed = true
	m.states[state] = entry
	return true, nil
}

// Sweep removes consumed and expired entries and returns the count.
func (m *MemoryManager) Sweep(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweep(), nil
}

// maybeSweep throttles inline sweeping. Caller must hold m.mu.
func (m *MemoryManager) maybeSweep() {
	if time.Since(m.lastSweep) < m.sweepEvery {
		return
	}
	m.lastSweep = time.Now()
	m.sweep()
}

// sweep deletes consumed and expired entries. Caller must hold m.mu.
func (m *MemoryManager) sweep() int {
	cutoff := time.Now().Add(-m.ttl)
	removed := 0
	for state, entry := range m.states {
		if entry.consumed || entry.createdAt.Before(cutoff) {
			delete(m.states, state)
			removed++
		}
	}
	return removed
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
