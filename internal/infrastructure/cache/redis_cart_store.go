package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	apptrade "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/retailcore/backend/internal/infrastructure/config"
)

// DefaultCartKeyPrefix namespaces cart keys
const DefaultCartKeyPrefix = "retailcore:cart:"

// RedisCartStore keeps carts as JSON strings in Redis, so every instance
// behind a load balancer sees the same cart
type RedisCartStore struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisCartStore creates a store on an existing client
func NewRedisCartStore(client redis.Cmdable, keyPrefix string, ttl time.Duration) *RedisCartStore {
	if keyPrefix == "" {
		keyPrefix = DefaultCartKeyPrefix
	}
	return &RedisCartStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the session's cart, or a new empty one
func (s *RedisCartStore) Get(ctx context.Context, sessionID string) (*trade.Cart, error) {
	id, err := validateSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return trade.NewCart(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return decodeCart(data)
}

// Save stores the cart and restarts its expiry
func (s *RedisCartStore) Save(ctx context.Context, cart *trade.Cart) error {
	id, err := validateSessionID(cart.SessionID)
	if err != nil {
		return err
	}
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete forgets the session's cart
func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	id, err := validateSessionID(sessionID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func (s *RedisCartStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

var _ apptrade.CartStore = (*RedisCartStore)(nil)
