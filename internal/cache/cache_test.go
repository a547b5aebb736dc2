package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geocache/internal/config"
)

func TestPassThroughWithoutRedis(t *testing.T) {
	c, err := Connect(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	calls := 0
	load := func(context.Context) (int64, error) {
		calls++
		return 7, nil
	}
	for i := 0; i < 2; i++ {
		v, err := Remember(context.Background(), c, "count", load)
		require.NoError(t, err)
		assert.Equal(t, int64(7), v)
	}
	assert.Equal(t, 2, calls)

	c.Forget(context.Background(), "count")
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisFallsBack(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := New(rdb, time.Second)
	t.Cleanup(func() { c.Close() })

	v, err := Remember(context.Background(), c, "users", func(context.Context) ([]string, error) {
		return []string{"alice"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, v)

	boom := errors.New("boom")
	_, err = Remember(context.Background(), c, "users", func(context.Context) ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
