package cache

import (
	"context"
	"sync"
	"time"

	apptrade "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/domain/trade"
)

// entry is an encoded cart with its expiry. Carts are stored encoded so
// callers never share a cart with the store.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryCartStore keeps carts in a map. It is suitable for a single
// instance and for tests.
type InMemoryCartStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCartStore creates a store whose carts expire ttl after their
// last save. A background goroutine removes expired carts.
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	s := &InMemoryCartStore{
		entries:  make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Get returns the session's cart, or a new empty one
func (s *InMemoryCartStore) Get(ctx context.Context, sessionID string) (*trade.Cart, error) {
	id, err := validateSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		return trade.NewCart(id), nil
	}
	return decodeCart(e.data)
}

// Save stores the cart and restarts its expiry
func (s *InMemoryCartStore) Save(ctx context.Context, cart *trade.Cart) error {
	id, err := validateSessionID(cart.SessionID)
	if err != nil {
		return err
	}
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{data: data, expiresAt: s.expiry()}
	return nil
}

// Delete forgets the session's cart
func (s *InMemoryCartStore) Delete(ctx context.Context, sessionID string) error {
	id, err := validateSessionID(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Size returns the number of stored carts, expired ones included
func (s *InMemoryCartStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the cleanup goroutine
func (s *InMemoryCartStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	return nil
}

func (s *InMemoryCartStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

func (s *InMemoryCartStore) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

func (s *InMemoryCartStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *InMemoryCartStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}

var _ apptrade.CartStore = (*InMemoryCartStore)(nil)
