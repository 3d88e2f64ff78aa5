package db

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	store := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: s.Addr()}),
		Ctx:    context.Background(),
	}
	t.Cleanup(store.Close)
	return s, store
}

func TestIngestLockExclusive(t *testing.T) {
	_, store := setupTestRedis(t)

	token, ok, err := store.AcquireIngestLock("paid_social", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	_, ok, err = store.AcquireIngestLock("paid_social", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while lock held")

	// A different source is an independent lock.
	_, ok, err = store.AcquireIngestLock("local_search", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.ReleaseIngestLock("paid_social", token))
	_, ok, err = store.AcquireIngestLock("paid_social", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock must be free after release")
}

func TestIngestLockStaleTokenNoop(t *testing.T) {
	_, store := setupTestRedis(t)

	token, ok, err := store.AcquireIngestLock("paid_social", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A token from a previous run must not release the current holder's lock.
	require.NoError(t, store.ReleaseIngestLock("paid_social", "stale-token"))
	_, ok, err = store.AcquireIngestLock("paid_social", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.ReleaseIngestLock("paid_social", token))
}

func TestIngestLockExpires(t *testing.T) {
	s, store := setupTestRedis(t)

	_, ok, err := store.AcquireIngestLock("paid_social", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	s.FastForward(2 * time.Second)

	_, ok, err = store.AcquireIngestLock("paid_social", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock must be reacquirable")
}

func TestLastIngestRunRoundTrip(t *testing.T) {
	_, store := setupTestRedis(t)

	got, err := store.LastIngestRun("paid_social")
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "unset source reports zero time")

	at := time.Date(2024, 3, 4, 6, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetLastIngestRun("paid_social", at))

	got, err = store.LastIngestRun("paid_social")
	require.NoError(t, err)
	assert.True(t, at.Equal(got))
}
