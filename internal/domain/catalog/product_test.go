package catalog

import (
	"testing"

	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestProduct(t *testing.T, stock, minStock int) *Product {
	t.Helper()
	p, err := NewProduct(ProductInput{
		SKU:       " cab-12 ",
		Name:      "Cable 12AWG",
		Stock:     stock,
		MinStock:  minStock,
		Cost:      d("10"),
		CostBasis: pricing.CostBasisPrimary,
	})
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("normalizes sku and defaults category", func(t *testing.T) {
		p, err := NewProduct(ProductInput{SKU: " ab-1 ", Name: "Widget", Stock: 3})
		require.NoError(t, err)

		assert.Equal(t, "AB-1", p.SKU)
		assert.Equal(t, DefaultCategory, p.Category)
		assert.Equal(t, pricing.CostBasisPrimary, p.CostBasis)
		assert.Equal(t, 1, p.GetVersion())

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		neg := d("-1")
		cases := map[string]ProductInput{
			"empty sku":        {Name: "x"},
			"empty name":       {SKU: "A"},
			"negative stock":   {SKU: "A", Name: "x", Stock: -1},
			"negative minimum": {SKU: "A", Name: "x", MinStock: -1},
			"negative cost":    {SKU: "A", Name: "x", Cost: d("-0.01")},
			"negative freight": {SKU: "A", Name: "x", Freight: d("-2")},
			"negative margin":  {SKU: "A", Name: "x", CustomMarginPercent: &neg},
			"negative vat":     {SKU: "A", Name: "x", CustomVatPercent: &neg},
		}
		for name, in := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := NewProduct(in)
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
			})
		}
	})
}

func TestProductDecreaseStock(t *testing.T) {
	t.Run("decrements stock", func(t *testing.T) {
		p := newTestProduct(t, 10, 0)
		require.NoError(t, p.DecreaseStock(3))
		assert.Equal(t, 7, p.Stock)
		assert.Empty(t, p.GetDomainEvents())
	})

	t.Run("reports the shortfall", func(t *testing.T) {
		p := newTestProduct(t, 2, 0)
		err := p.DecreaseStock(5)

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeInsufficientStock, de.Code)
		assert.Equal(t, "Cable 12AWG", de.Details["product"])
		assert.Equal(t, 5, de.Details["requested"])
		assert.Equal(t, 2, de.Details["available"])
		assert.Equal(t, 2, p.Stock)
	})

	t.Run("raises a low stock event when crossing the minimum", func(t *testing.T) {
		p := newTestProduct(t, 6, 5)
		require.NoError(t, p.DecreaseStock(1))

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*StockBelowMinimumEvent)
		require.True(t, ok)
		assert.Equal(t, 5, evt.CurrentStock)

		require.NoError(t, p.DecreaseStock(1))
		assert.Len(t, p.GetDomainEvents(), 1, "already low, no second alert")
	})

	t.Run("rejects non positive quantities", func(t *testing.T) {
		p := newTestProduct(t, 6, 0)
		assert.Error(t, p.DecreaseStock(0))
		assert.Error(t, p.IncreaseStock(-1))
	})
}

func TestProductApplyReceipt(t *testing.T) {
	p := newTestProduct(t, 4, 0)
	p.Freight = d("1.25")

	require.NoError(t, p.ApplyReceipt(10, d("2"), d("0.5"), pricing.CostBasisSecondary))

	assert.Equal(t, 14, p.Stock)
	assert.True(t, p.Cost.Equal(d("2")))
	assert.True(t, p.Freight.Equal(d("0.5")), "freight is overwritten, not blended")
	assert.Equal(t, pricing.CostBasisSecondary, p.CostBasis)
	assert.Equal(t, EventTypeStockReceived, p.GetDomainEvents()[0].EventType())

	assert.Error(t, p.ApplyReceipt(0, d("2"), d("0"), pricing.CostBasisPrimary))
	assert.Error(t, p.ApplyReceipt(1, d("-2"), d("0"), pricing.CostBasisPrimary))
}

func TestProductUpdateKeepsStock(t *testing.T) {
	p := newTestProduct(t, 9, 0)
	margin := d("45")

	err := p.Update(ProductInput{SKU: "cab-13", Name: "Cable 13", Stock: 100, Cost: d("3"), CustomMarginPercent: &margin})
	require.NoError(t, err)

	assert.Equal(t, "CAB-13", p.SKU)
	assert.Equal(t, 9, p.Stock)
	assert.Equal(t, 2, p.GetVersion())
	assert.True(t, p.Price(pricing.DefaultSettings()).BasePriceUSD.Equal(d("4.35")))
}

func TestProductIsLowStock(t *testing.T) {
	assert.False(t, newTestProduct(t, 0, 0).IsLowStock())
	assert.True(t, newTestProduct(t, 2, 2).IsLowStock())
	assert.False(t, newTestProduct(t, 3, 2).IsLowStock())
}
