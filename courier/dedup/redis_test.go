package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, cfg RedisConfig) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewRedis(client, cfg), mr
}

func TestRedis_MarkAndSeen(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t, RedisConfig{})

	seen, err := store.Seen(ctx, "e-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkProcessed(ctx, "e-1"))

	seen, err = store.Seen(ctx, "e-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRedis_KeyPrefix(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, RedisConfig{KeyPrefix: "myapp:"})

	require.NoError(t, store.MarkProcessed(ctx, "e-1"))
	assert.True(t, mr.Exists("myapp:e-1"))
}

func TestRedis_DefaultTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, RedisConfig{})

	require.NoError(t, store.MarkProcessed(ctx, "e-1"))
	assert.Equal(t, 24*time.Hour, mr.TTL("courier:dedup:e-1"))
}

func TestRedis_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, RedisConfig{TTL: time.Minute})

	require.NoError(t, store.MarkProcessed(ctx, "e-1"))

	mr.FastForward(2 * time.Minute)

	seen, err := store.Seen(ctx, "e-1")
	require.NoError(t, err)
	assert.False(t, seen, "expected the marker to expire")
}
