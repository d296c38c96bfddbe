package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialmembrane/authsvc/pkg/ratelimiter"
)

func newRedisLimiter(t *testing.T) (*ratelimiter.Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ratelimiter.New(ratelimiter.NewRedisStore(client)), mr
}

func TestRedisStore_CountAndRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	limiter, _ := newRedisLimiter(t)
	policy := ratelimiter.Policy{MaxAttempts: 3, Window: time.Minute}

	res, err := limiter.Check(ctx, "login:a@example.com", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Remaining)

	for range 3 {
		require.NoError(t, limiter.Record(ctx, "login:a@example.com"))
	}

	res, err = limiter.Check(ctx, "login:a@example.com", policy)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)
}

func TestRedisStore_IdentifiersAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	limiter, _ := newRedisLimiter(t)
	policy := ratelimiter.Policy{MaxAttempts: 1, Window: time.Minute}

	require.NoError(t, limiter.Record(ctx, "otp_verify:a@example.com"))

	res, err := limiter.Check(ctx, "otp_verify:a@example.com", policy)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = limiter.Check(ctx, "otp_verify:b@example.com", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisStore_AttemptsAgeOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	limiter, _ := newRedisLimiter(t)
	policy := ratelimiter.Policy{MaxAttempts: 1, Window: 50 * time.Millisecond}

	require.NoError(t, limiter.Record(ctx, "login:c@example.com"))

	res, err := limiter.Check(ctx, "login:c@example.com", policy)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// Scores are real timestamps, so waiting moves the window even
	// though miniredis' clock stands still.
	time.Sleep(80 * time.Millisecond)

	res, err = limiter.Check(ctx, "login:c@example.com", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
