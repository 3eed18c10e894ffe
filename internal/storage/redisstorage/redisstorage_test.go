package redisstorage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), Options{Addr: mr.Addr(), TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, 0)

	_, found, err := c.Get(ctx, "resized-image-x")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, "resized-image-x", `<img alt="" src="data:..."/>`))

	v, found, err := c.Get(ctx, "resized-image-x")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `<img alt="" src="data:..."/>`, v)
	require.Equal(t, time.Duration(0), mr.TTL("resized-image-x"))
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "k", "v"))
	require.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRedisCache_BackendErrorPropagates(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, 0)

	mr.SetError("LOADING redis is loading the dataset in memory")

	_, _, err := c.Get(ctx, "k")
	require.Error(t, err)
	require.Error(t, c.Set(ctx, "k", "v"))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), Options{Addr: addr})
	require.Error(t, err)
}
