package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server, e.g. TEST_REDIS_ADDR=localhost:6379
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, addr, os.Getenv("TEST_REDIS_PASSWORD"))
	require.NoError(t, err)
	cache := NewRedisCache(client)
	t.Cleanup(func() { cache.Close() })

	key := "test:round:" + time.Now().Format(time.RFC3339Nano)
	_, err = cache.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, key, `{"roundId":"r1"}`, time.Minute))
	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"roundId":"r1"}`, got)

	require.NoError(t, cache.Del(ctx, key))
	_, err = cache.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestConnectFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Connect(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}
