package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCartStore_KeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	assert.Equal(t, DefaultCartKeyPrefix+"s1", NewRedisCartStore(client, "", time.Hour).key("s1"))
	assert.Equal(t, "pos:s1", NewRedisCartStore(client, "pos:", time.Hour).key("s1"))
}

func TestRedisCartStore_ConnectionErrorsAreWrapped(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	store := NewRedisCartStore(client, "", time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load cart")

	err = store.Save(ctx, sampleCart("s1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save cart")

	_, err = store.Get(ctx, " ")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "failed to load cart")
}
