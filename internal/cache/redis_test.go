package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}), ttl)
	t.Cleanup(func() { c.Close() })
	return c, srv
}

type cachedValue struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", cachedValue{Count: 2, Names: []string{"a", "b"}}))

	var got cachedValue
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedValue{Count: 2, Names: []string{"a", "b"}}, got)
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	var got cachedValue
	found, err := c.Get(context.Background(), "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, srv := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", cachedValue{Count: 1}))
	srv.FastForward(31 * time.Second)

	var got cachedValue
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_Unavailable(t *testing.T) {
	c, srv := newTestCache(t, time.Minute)
	srv.Close()

	var got cachedValue
	_, err := c.Get(context.Background(), "k", &got)
	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}

func TestQueryKey(t *testing.T) {
	a := QueryKey("p", map[string]string{"location": "Valencia", "maxPrice": "500"})
	b := QueryKey("p", map[string]string{"maxPrice": "500", "location": "Valencia"})
	c := QueryKey("p", map[string]string{"location": "Valencia"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^p:[0-9a-f]{32}$`, a)
	assert.Equal(t, QueryKey("p", nil), QueryKey("p", map[string]string{}))
}
