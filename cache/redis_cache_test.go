package cache

import (
	"context"
	"testing"
	"time"

	"coursegen/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, logger.NewNop()), mr
}

func TestRedisCacheGetSet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "course:1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "course:1", `{"id":"1"}`, time.Minute))
	val, found, err := c.Get(ctx, "course:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"id":"1"}`, val)

	mr.FastForward(2 * time.Minute)
	_, found, err = c.Get(ctx, "course:1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCacheDeletePattern(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	for _, k := range []string{"suggestions:go", "suggestions:rust", "course:1"} {
		require.NoError(t, c.Set(ctx, k, "x", 0))
	}

	require.NoError(t, c.DeletePattern(ctx, "suggestions:*"))
	assert.False(t, mr.Exists("suggestions:go"))
	assert.False(t, mr.Exists("suggestions:rust"))
	assert.True(t, mr.Exists("course:1"))
}

func TestRedisCacheUnavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, found, err := c.Get(context.Background(), "course:1")
	assert.Error(t, err)
	assert.False(t, found)
}
