// Package trade holds the selling side (cart and sale) and the buying side
// (supplier invoice) of the shop.
package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CartLine is a product snapshot with prices frozen when the line was
// created. Later settings changes do not reprice it.
type CartLine struct {
	ProductID     uuid.UUID       `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	UnitCostUSD   decimal.Decimal `json:"unit_cost_usd"`
	BasePriceUSD  decimal.Decimal `json:"base_price_usd"`
	TaxUSD        decimal.Decimal `json:"tax_usd"`
	FinalPriceUSD decimal.Decimal `json:"final_price_usd"`
}

// LineTotal is FinalPriceUSD times quantity
func (l CartLine) LineTotal() decimal.Decimal {
	return l.FinalPriceUSD.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the pending sale of one session
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartTotals sums the lines of a cart
type CartTotals struct {
	Items      int             `json:"items"`
	BaseUSD    decimal.Decimal `json:"base_usd"`
	TaxUSD     decimal.Decimal `json:"tax_usd"`
	FinalUSD   decimal.Decimal `json:"final_usd"`
	FinalLocal decimal.Decimal `json:"final_local"`
}

// NewCart returns an empty cart for a session
func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Lines: []CartLine{}, UpdatedAt: time.Now()}
}

// AddLine adds one unit of product. A product already in the cart gets its
// quantity bumped; a new line is priced once with the given settings.
func (c *Cart) AddLine(p *catalog.Product, s pricing.Settings) (*CartLine, error) {
	if line := c.line(p.ID); line != nil {
		if line.Quantity+1 > p.Stock {
			return nil, shared.NewInsufficientStockError(p.Name, line.Quantity+1, p.Stock)
		}
		line.Quantity++
		c.UpdatedAt = time.Now()
		return line, nil
	}
	if p.Stock < 1 {
		return nil, shared.NewInsufficientStockError(p.Name, 1, p.Stock)
	}

	prices := p.Price(s)
	c.Lines = append(c.Lines, CartLine{
		ProductID:     p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Quantity:      1,
		UnitCostUSD:   valueobject.Round2(prices.BaseCostUSD),
		BasePriceUSD:  valueobject.Round2(prices.BasePriceUSD),
		TaxUSD:        valueobject.Round2(prices.TaxUSD),
		FinalPriceUSD: valueobject.Round2(prices.FinalPriceUSD),
	})
	c.UpdatedAt = time.Now()
	return &c.Lines[len(c.Lines)-1], nil
}

// SetQuantity sets a line's quantity. n <= 0 removes the line; more than
// available is rejected rather than clamped.
func (c *Cart) SetQuantity(productID uuid.UUID, n, available int) error {
	line := c.line(productID)
	if line == nil {
		return shared.NewDomainError(shared.CodeCartLineNotFound, "Product is not in the cart")
	}
	if n <= 0 {
		return c.RemoveLine(productID)
	}
	if n > available {
		return shared.NewInsufficientStockError(line.Name, n, available)
	}
	line.Quantity = n
	c.UpdatedAt = time.Now()
	return nil
}

// RemoveLine drops a product from the cart
func (c *Cart) RemoveLine(productID uuid.UUID) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeCartLineNotFound, "Product is not in the cart")
}

// Clear empties the cart. Stock is untouched; it only moves at settlement.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.UpdatedAt = time.Now()
}

// IsEmpty returns true when the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Totals sums base, tax and final prices; the local total uses primaryRate
func (c *Cart) Totals(primaryRate decimal.Decimal) CartTotals {
	t := CartTotals{BaseUSD: decimal.Zero, TaxUSD: decimal.Zero, FinalUSD: decimal.Zero}
	for _, l := range c.Lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		t.Items += l.Quantity
		t.BaseUSD = t.BaseUSD.Add(l.BasePriceUSD.Mul(qty))
		t.TaxUSD = t.TaxUSD.Add(l.TaxUSD.Mul(qty))
		t.FinalUSD = t.FinalUSD.Add(l.FinalPriceUSD.Mul(qty))
	}
	t.FinalLocal = t.FinalUSD.Mul(primaryRate)
	return t
}

func (c *Cart) line(productID uuid.UUID) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}
