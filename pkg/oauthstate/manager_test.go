package oauthstate_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialmembrane/authsvc/pkg/oauthstate"
)

func TestMemoryManager_SingleUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr := oauthstate.NewMemoryManager()

	state, err := mgr.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, state)

	ok, err := mgr.ValidateAndConsume(ctx, state)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.ValidateAndConsume(ctx, state)
	require.NoError(t, err)
	assert.False(t, ok, "a state can only ever be consumed once")
}

func TestMemoryManager_UnknownState(t *testing.T) {
	t.Parallel()
	mgr := oauthstate.NewMemoryManager()

	ok, err := mgr.ValidateAndConsume(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = mgr.ValidateAndConsume(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryManager_ExpiredState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr := oauthstate.NewMemoryManager(oauthstate.WithTTL(time.Millisecond))

	state, err := mgr.Create(ctx)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	ok, err := mgr.ValidateAndConsume(ctx, state)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryManager_StatesAreUnique(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr := oauthstate.NewMemoryManager()

	seen := make(map[string]struct{})
	for range 100 {
		state, err := mgr.Create(ctx)
		require.NoError(t, err)
		_, dup := seen[state]
		require.False(t, dup)
		seen[state] = struct{}{}
	}
}

func TestMemoryManager_ConcurrentSingleConsumer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr := oauthstate.NewMemoryManager()

	state, err := mgr.Create(ctx)
	require.NoError(t, err)

	const goroutines = 50
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			ok, err := mgr.ValidateAndConsume(ctx, state)
			assert.NoError(t, err)
			if ok {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load(), "exactly one caller may win the state")
}

func TestMemoryManager_Sweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr := oauthstate.NewMemoryManager(oauthstate.WithTTL(time.Millisecond))

	consumed, err := mgr.Create(ctx)
	require.NoError(t, err)
	_, err = mgr.Create(ctx)
	require.NoError(t, err)

	ok, err := mgr.ValidateAndConsume(ctx, consumed)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(10 * time.Millisecond)

	removed, err := mgr.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed, "sweep removes consumed and expired states")

	removed, err = mgr.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
