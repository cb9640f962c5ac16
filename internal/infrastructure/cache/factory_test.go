package cache

import (
	"testing"
	"time"

	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// unreachableRedis points at a port nothing listens on
var unreachableRedis = config.RedisConfig{Host: "127.0.0.1", Port: 1}

func TestCartStoreFactory_Memory(t *testing.T) {
	f := NewCartStoreFactory(config.CartConfig{Store: config.CartStoreMemory, TTL: time.Hour}, unreachableRedis)

	store, closer, err := f.Create()
	require.NoError(t, err)
	defer closer.Close()
	assert.IsType(t, &InMemoryCartStore{}, store)
}

func TestCartStoreFactory_RedisFallsBackToMemory(t *testing.T) {
	f := NewCartStoreFactory(
		config.CartConfig{Store: config.CartStoreRedis, TTL: time.Hour},
		unreachableRedis,
		WithLogger(zaptest.NewLogger(t)),
	)

	store, closer, err := f.Create()
	require.NoError(t, err)
	defer closer.Close()
	assert.IsType(t, &InMemoryCartStore{}, store)
}

func TestCartStoreFactory_RedisWithoutFallbackFails(t *testing.T) {
	f := NewCartStoreFactory(
		config.CartConfig{Store: config.CartStoreRedis},
		unreachableRedis,
		WithInMemoryFallback(false),
	)

	store, closer, err := f.Create()
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Nil(t, closer)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
