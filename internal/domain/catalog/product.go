// Package catalog holds the Product aggregate, the single owner of stock.
package catalog

import (
	"strings"

	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when a product is created without one
const DefaultCategory = "General"

// Product is an item of inventory. SKU is a lookup key and is not
// guaranteed unique across suppliers.
type Product struct {
	shared.BaseAggregateRoot
	SKU                 string
	Name                string
	Category            string
	Supplier            string
	Stock               int
	MinStock            int
	Cost                decimal.Decimal // unit cost, in USD at the CostBasis rate
	Freight             decimal.Decimal // unit freight from the last received invoice
	CostBasis           pricing.CostBasis
	CustomMarginPercent *decimal.Decimal
	CustomVatPercent    *decimal.Decimal
}

// ProductInput carries the editable fields of a product
type ProductInput struct {
	SKU                 string
	Name                string
	Category            string
	Supplier            string
	Stock               int
	MinStock            int
	Cost                decimal.Decimal
	Freight             decimal.Decimal
	CostBasis           pricing.CostBasis
	CustomMarginPercent *decimal.Decimal
	CustomVatPercent    *decimal.Decimal
}

// NewProduct creates a product after validating its fields
func NewProduct(in ProductInput) (*Product, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Stock cannot be negative")
	}

	p := &Product{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		SKU:                 in.SKU,
		Name:                in.Name,
		Category:            in.Category,
		Supplier:            in.Supplier,
		Stock:               in.Stock,
		MinStock:            in.MinStock,
		Cost:                in.Cost,
		Freight:             in.Freight,
		CostBasis:           in.CostBasis,
		CustomMarginPercent: in.CustomMarginPercent,
		CustomVatPercent:    in.CustomVatPercent,
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces the descriptive and cost fields. Stock is not editable
// here; it only moves through sales, invoices and adjustments.
func (p *Product) Update(in ProductInput) error {
	in.normalize()
	if err := in.validate(); err != nil {
		return err
	}
	p.SKU = in.SKU
	p.Name = in.Name
	p.Category = in.Category
	p.Supplier = in.Supplier
	p.MinStock = in.MinStock
	p.Cost = in.Cost
	p.Freight = in.Freight
	p.CostBasis = in.CostBasis
	p.CustomMarginPercent = in.CustomMarginPercent
	p.CustomVatPercent = in.CustomVatPercent
	p.Touch()
	return nil
}

// PricingInput exposes the fields the pricing engine reads
func (p *Product) PricingInput() pricing.Input {
	return pricing.Input{
		Cost:                p.Cost,
		Freight:             p.Freight,
		CostBasis:           p.CostBasis,
		CustomMarginPercent: p.CustomMarginPercent,
		CustomVatPercent:    p.CustomVatPercent,
	}
}

// Price runs the pricing engine for this product
func (p *Product) Price(s pricing.Settings) pricing.Breakdown {
	return pricing.Calculate(p.PricingInput(), s)
}

// HasStock reports whether qty units are available
func (p *Product) HasStock(qty int) bool {
	return qty <= p.Stock
}

// DecreaseStock takes qty units out of inventory
func (p *Product) DecreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	if qty > p.Stock {
		return shared.NewInsufficientStockError(p.Name, qty, p.Stock)
	}
	wasLow := p.IsLowStock()
	p.Stock -= qty
	p.Touch()
	if !wasLow && p.IsLowStock() {
		p.AddDomainEvent(NewStockBelowMinimumEvent(p))
	}
	return nil
}

// IncreaseStock puts qty units back into inventory
func (p *Product) IncreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be positive")
	}
	p.Stock += qty
	p.Touch()
	return nil
}

// ApplyReceipt books a received invoice line. Cost and freight are
// overwritten with this receipt's values, not averaged with stock on hand.
func (p *Product) ApplyReceipt(qty int, unitCost, unitFreight decimal.Decimal, basis pricing.CostBasis) error {
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Received quantity must be positive")
	}
	if unitCost.IsNegative() || unitFreight.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Cost and freight cannot be negative")
	}
	p.Stock += qty
	p.Cost = unitCost
	p.Freight = unitFreight
	if basis.IsValid() {
		p.CostBasis = basis
	}
	p.Touch()
	p.AddDomainEvent(NewStockReceivedEvent(p, qty))
	return nil
}

// IsLowStock reports stock at or below the reorder threshold
func (p *Product) IsLowStock() bool {
	return p.MinStock > 0 && p.Stock <= p.MinStock
}

func (in *ProductInput) normalize() {
	in.SKU = NormalizeSKU(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	in.Supplier = strings.TrimSpace(in.Supplier)
	if !in.CostBasis.IsValid() {
		in.CostBasis = pricing.CostBasisPrimary
	}
}

func (in *ProductInput) validate() error {
	if in.SKU == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "SKU cannot be empty")
	}
	if len(in.SKU) > 50 {
		return shared.NewDomainError(shared.CodeInvalidInput, "SKU cannot exceed 50 characters")
	}
	if in.Name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot be empty")
	}
	if len(in.Name) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product name cannot exceed 200 characters")
	}
	if in.MinStock < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Minimum stock cannot be negative")
	}
	if in.Cost.IsNegative() || in.Freight.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Cost and freight cannot be negative")
	}
	if in.CustomMarginPercent != nil && in.CustomMarginPercent.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Custom margin cannot be negative")
	}
	if in.CustomVatPercent != nil && in.CustomVatPercent.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Custom VAT cannot be negative")
	}
	return nil
}

// NormalizeSKU trims and uppercases a SKU for lookups
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
