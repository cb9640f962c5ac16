package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRevocationList(t *testing.T) {
	ctx := context.Background()
	list := NewInMemoryRevocationList()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	list.now = func() time.Time { return now }

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Minute))

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, list.entries)
}

func TestInMemoryRevocationList_NonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	list := NewInMemoryRevocationList()

	require.NoError(t, list.Revoke(ctx, "expired", 0))
	revoked, err := list.IsRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevocationList_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	list := NewRedisRevocationList(client)
	ctx := context.Background()

	assert.Error(t, list.Revoke(ctx, "jti-1", time.Minute))
	_, err := list.IsRevoked(ctx, "jti-1")
	assert.Error(t, err)

	// expired tokens never touch redis
	assert.NoError(t, list.Revoke(ctx, "jti-1", 0))
	assert.Equal(t, "retailcore:revoked:jti-1", list.key("jti-1"))
}
