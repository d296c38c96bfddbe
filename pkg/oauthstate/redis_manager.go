package oauthstate

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisManager keeps the state table in Redis so multiple service
// replicas can validate callbacks regardless of which replica issued the
// redirect. Consumption relies on GETDEL for single-consumer semantics;
// expiry rides on the key TTL, so no explicit sweep is needed.
type RedisManager struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisOption configures a RedisManager.
type RedisOption func(*RedisManager)

// WithRedisTTL sets the state expiry window. Default is 30 minutes.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(m *RedisManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithRedisKeyPrefix sets the key namespace. Default is "oauthstate:".
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(m *RedisManager) {
		if prefix != "" {
			m.keyPrefix = prefix
		}
	}
}

// NewRedisManager creates a Redis-backed state manager.
func NewRedisManager(client *redis.Client, opts ...RedisOption) *RedisManager {
	m := &RedisManager{
		client:    client,
		keyPrefix: "oauthstate:",
		ttl:       30 * time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create registers and returns a fresh URL-safe random state.
func (m *RedisManager) Create(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", err
	}
	if err := m.client.Set(ctx, m.keyPrefix+state, "1", m.ttl).Err(); err != nil {
		return "", errors.Join(ErrStoreFailure, err)
	}
	return state, nil
}

// ValidateAndConsume atomically removes and checks the state via GETDEL.
// Unknown and expired states are indistinguishable: both return false.
func (m *RedisManager) ValidateAndConsume(ctx context.Context, state string) (bool, error) {
	_, err := m.client.GetDel(ctx, m.keyPrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, errors.Join(ErrStoreFailure, err)
	}
	return true, nil
}

// Sweep is a no-op for Redis; key TTLs handle expiry.
func (m *RedisManager) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}
