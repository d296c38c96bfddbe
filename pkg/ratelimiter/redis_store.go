package ratelimiter

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store with one sorted set per identifier, scored
// by attempt timestamp. It exists for multi-instance deployments where the
// in-process MemoryStore would give each replica its own budget.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	retention time.Duration
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the key namespace. Default is "ratelimit:".
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.keyPrefix = prefix
		}
	}
}

// WithRedisRetention sets the key TTL and prune horizon. Retention must
// cover the widest policy window in use.
func WithRedisRetention(retention time.Duration) RedisStoreOption {
	return func(rs *RedisStore) {
		if retention > 0 {
			rs.retention = retention
		}
	}
}

// NewRedisStore creates a Redis-backed attempt store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
		retention: time.Hour,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// Count prunes attempts beyond the retention horizon, then sums those
// strictly inside the trailing window.
func (rs *RedisStore) Count(ctx context.Context, identifier string, window time.Duration) (int, time.Time, error) {
	key := rs.keyPrefix + identifier
	now := time.Now()

	pruneBefore := strconv.FormatInt(now.Add(-rs.retention).UnixNano(), 10)
	if err := rs.client.ZRemRangeByScore(ctx, key, "-inf", "("+pruneBefore).Err(); err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreFailure, err)
	}

	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)
	members, err := rs.client.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
		Min: "(" + cutoff,
		Max: "+inf",
	}).Result()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreFailure, err)
	}

	if len(members) == 0 {
		return 0, time.Time{}, nil
	}
	oldest := time.Unix(0, int64(members[0].Score))
	return len(members), oldest, nil
}

// Record appends a unit-weight attempt and refreshes the key TTL so idle
// identifiers expire on their own.
func (rs *RedisStore) Record(ctx context.Context, identifier string) error {
	key := rs.keyPrefix + identifier
	now := time.Now()

	pipe := rs.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString(),
	})
	pipe.Expire(ctx, key, rs.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}
