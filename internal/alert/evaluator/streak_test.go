package evaluator

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStreakStore(t *testing.T) {
	store := NewMemoryStreakStore()
	ctx := context.Background()

	n, err := store.Incr(ctx, "streak:rule:1:2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.Incr(ctx, "streak:rule:1:2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Separate keys carry independent counters.
	n, err = store.Incr(ctx, "streak:rule:1:3")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Reset(ctx, "streak:rule:1:2"))
	n, err = store.Incr(ctx, "streak:rule:1:2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRedisStreakStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStreakStore(client)
	ctx := context.Background()

	n, err := store.Incr(ctx, "streak:rule:7:8")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.Incr(ctx, "streak:rule:7:8")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Reset(ctx, "streak:rule:7:8"))
	n, err = store.Incr(ctx, "streak:rule:7:8")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locker := NewLocker(client)
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "evalpair:1:water", lockTestTTL)
	require.NoError(t, err)
	require.True(t, ok)

	// Second acquisition while held fails without error.
	_, ok, err = locker.TryLock(ctx, "evalpair:1:water", lockTestTTL)
	require.NoError(t, err)
	assert.False(t, ok)

	// A wrong token must not release the lease.
	require.NoError(t, locker.Release(ctx, "evalpair:1:water", "not-the-token"))
	_, ok, err = locker.TryLock(ctx, "evalpair:1:water", lockTestTTL)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "evalpair:1:water", token))
	_, ok, err = locker.TryLock(ctx, "evalpair:1:water", lockTestTTL)
	require.NoError(t, err)
	assert.True(t, ok)
}

const lockTestTTL = pairLockTTL
