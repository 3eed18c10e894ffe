package memstorage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0, 0)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, "k", "v1"))
	require.NoError(t, c.Set(ctx, "k", "v2"))

	v, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v2", v)

	require.NoError(t, c.Close())
	require.Equal(t, 0, c.Len())
}

func TestMemoryCache_EvictsBySize(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, 0)

	require.NoError(t, c.Set(ctx, "a", "1"))
	require.NoError(t, c.Set(ctx, "b", "2"))
	require.NoError(t, c.Set(ctx, "c", "3"))

	_, found, _ := c.Get(ctx, "a")
	require.False(t, found)
	require.Equal(t, 2, c.Len())
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, 20*time.Millisecond)

	require.NoError(t, c.Set(ctx, "k", "v"))
	require.Eventually(t, func() bool {
		_, found, _ := c.Get(ctx, "k")
		return !found
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(100, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			require.NoError(t, c.Set(ctx, key, "v"))
			_, _, err := c.Get(ctx, key)
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 5, c.Len())
}
