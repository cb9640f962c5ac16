package cache

import (
	"io"

	apptrade "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CartStoreFactory creates the cart store named by configuration
type CartStoreFactory struct {
	cartConfig            config.CartConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CartStoreFactoryOption is a functional option for configuring the factory
type CartStoreFactoryOption func(*CartStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) CartStoreFactoryOption {
	return func(f *CartStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCartStoreFactory creates a new factory
func NewCartStoreFactory(cartCfg config.CartConfig, redisCfg config.RedisConfig, opts ...CartStoreFactoryOption) *CartStoreFactory {
	f := &CartStoreFactory{
		cartConfig:            cartCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured store and a closer releasing its resources
func (f *CartStoreFactory) Create() (apptrade.CartStore, io.Closer, error) {
	if f.cartConfig.Store != config.CartStoreRedis {
		f.logger.Info("Using in-memory cart store", zap.Duration("ttl", f.cartConfig.TTL))
		store := NewInMemoryCartStore(f.cartConfig.TTL)
		return store, store, nil
	}

	client, err := NewRedisClient(f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, nil, err
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory cart store",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		store := NewInMemoryCartStore(f.cartConfig.TTL)
		return store, store, nil
	}

	f.logger.Info("Using Redis cart store",
		zap.String("addr", f.redisConfig.Addr()),
		zap.String("key_prefix", f.cartConfig.KeyPrefix),
	)
	return NewRedisCartStore(client, f.cartConfig.KeyPrefix, f.cartConfig.TTL), client, nil
}
