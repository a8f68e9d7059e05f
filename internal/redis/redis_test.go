package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewRedisClient_Pings(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", "")
	require.NoError(t, err)
	defer client.Close()
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr, "", "")
	assert.ErrorContains(t, err, "ping redis")
}

type payload struct {
	Name  string   `json:"name"`
	Slots []string `json:"slots"`
}

func TestJSONCache_RoundTrip(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewJSONCache(client, "availability")
	ctx := context.Background()

	var miss payload
	found, err := cache.Get(ctx, "therapy:p1", &miss)
	require.NoError(t, err)
	assert.False(t, found)

	want := payload{Name: "therapy", Slots: []string{"a", "b"}}
	require.NoError(t, cache.Set(ctx, "therapy:p1", want, time.Minute))
	assert.True(t, mr.Exists("availability:therapy:p1"))

	var got payload
	found, err = cache.Get(ctx, "therapy:p1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	found, err = cache.Get(ctx, "therapy:p1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJSONCache_CorruptValue(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewJSONCache(client, "")
	require.NoError(t, mr.Set("broken", "{not json"))

	var got payload
	found, err := cache.Get(context.Background(), "broken", &got)
	assert.False(t, found)
	assert.ErrorContains(t, err, "cache decode")
}

func TestRedisLocker_RunsAndReleases(t *testing.T) {
	mr, client := newTestClient(t)
	locker := NewRedisLocker(client, 5*time.Second)

	ran := false
	err := locker.WithLock(context.Background(), "availability:therapy:p1", func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists("lock:availability:therapy:p1"))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, mr.Exists("lock:availability:therapy:p1"))
}

func TestRedisLocker_HeldElsewhere(t *testing.T) {
	mr, client := newTestClient(t)
	locker := NewRedisLocker(client, 5*time.Second)
	require.NoError(t, mr.Set("lock:k", "someone-else"))

	err := locker.WithLock(context.Background(), "k", func(ctx context.Context) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})

	assert.ErrorIs(t, err, ErrLockNotAcquired)
	got, _ := mr.Get("lock:k")
	assert.Equal(t, "someone-else", got)
}

func TestRedisLocker_PropagatesError(t *testing.T) {
	_, client := newTestClient(t)
	locker := NewRedisLocker(client, 5*time.Second)
	boom := errors.New("boom")

	err := locker.WithLock(context.Background(), "k", func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}
