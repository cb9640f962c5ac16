package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart(sessionID string) *trade.Cart {
	cart := trade.NewCart(sessionID)
	cart.Lines = append(cart.Lines, trade.CartLine{
		ProductID:     uuid.New(),
		SKU:           "AB-1",
		Name:          "Hammer",
		Quantity:      2,
		UnitCostUSD:   decimal.RequireFromString("10"),
		BasePriceUSD:  decimal.RequireFromString("13"),
		TaxUSD:        decimal.RequireFromString("2.08"),
		FinalPriceUSD: decimal.RequireFromString("15.08"),
	})
	return cart
}

func TestInMemoryCartStore_GetReturnsEmptyCart(t *testing.T) {
	store := NewInMemoryCartStore(time.Hour)
	defer store.Close()

	cart, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", cart.SessionID)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryCartStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCartStore(time.Hour)
	defer store.Close()

	cart := sampleCart("s1")
	require.NoError(t, store.Save(ctx, cart))

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, "AB-1", loaded.Lines[0].SKU)
	assert.True(t, loaded.Lines[0].FinalPriceUSD.Equal(decimal.RequireFromString("15.08")))

	loaded.Lines[0].Quantity = 99
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Lines[0].Quantity)

	require.NoError(t, store.Delete(ctx, "s1"))
	empty, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, empty.Lines)
}

func TestInMemoryCartStore_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCartStore(time.Hour)
	defer store.Close()

	require.NoError(t, store.Save(ctx, sampleCart("a")))

	other, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, other.Lines)
}

func TestInMemoryCartStore_BlankSessionRejected(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCartStore(time.Hour)
	defer store.Close()

	_, err := store.Get(ctx, "  ")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeInvalidInput, domainErr.Code)

	assert.Error(t, store.Save(ctx, trade.NewCart("")))
	assert.Error(t, store.Delete(ctx, ""))
}

func TestInMemoryCartStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCartStore(time.Minute)
	defer store.Close()

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, sampleCart("s1")))

	now = now.Add(30 * time.Second)
	cart, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)

	now = now.Add(time.Minute)
	cart, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	store.cleanup()
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryCartStore_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCartStore(0)
	defer store.Close()

	require.NoError(t, store.Save(ctx, sampleCart("s1")))
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryCartStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryCartStore(time.Hour)
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			assert.NoError(t, store.Save(ctx, sampleCart(id)))
			_, err := store.Get(ctx, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, store.Size())
}

func TestInMemoryCartStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryCartStore(time.Hour)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
