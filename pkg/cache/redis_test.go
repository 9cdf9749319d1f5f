package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/prereqtree/pkg/cache"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *cache.RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	c := cache.NewRedisCacheFromClient(client)
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	_, c := newRedis(t)
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "tree", []byte(`{"name":"CS2040"}`), time.Hour))
	data, hit, err := c.Get(ctx, "tree")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `{"name":"CS2040"}`, string(data))

	require.NoError(t, c.Delete(ctx, "tree"))
	_, hit, err = c.Get(ctx, "tree")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_Prefix(t *testing.T) {
	mr, c := newRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists(cache.DefaultRedisPrefix+"k"))

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	other := cache.NewRedisCacheFromClient(client, cache.WithPrefix("other:"))
	defer other.Close()
	_, hit, err := other.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit, "prefixes must not share entries")
}

func TestRedisCache_TTLExpiration(t *testing.T) {
	mr, c := newRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "payload", []byte("x"), time.Second))
	assert.Equal(t, time.Second, mr.TTL(cache.DefaultRedisPrefix+"payload"))

	mr.FastForward(2 * time.Second)

	_, hit, err := c.Get(ctx, "payload")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_Clear(t *testing.T) {
	mr, c := newRedis(t)
	ctx := context.Background()

	for i := range 250 {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("key-%d", i), []byte("v"), 0))
	}
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, []string{"unrelated"}, mr.Keys())
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := cache.NewRedisCache(ctx, addr)
	assert.Error(t, err)
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	assert.True(t, mr.Exists(cache.DefaultRedisPrefix+"k"))
}
