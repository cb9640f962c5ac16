package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a product by hand
type CreateProductRequest struct {
	SKU                 string           `json:"sku" binding:"required,min=1,max=50"`
	Name                string           `json:"name" binding:"required,min=1,max=200"`
	Category            string           `json:"category" binding:"max=100"`
	Supplier            string           `json:"supplier" binding:"max=200"`
	Stock               int              `json:"stock" binding:"min=0"`
	MinStock            int              `json:"min_stock" binding:"min=0"`
	Cost                decimal.Decimal  `json:"cost" binding:"decimal_gte0"`
	Freight             decimal.Decimal  `json:"freight" binding:"decimal_gte0"`
	CostBasis           string           `json:"cost_basis" binding:"omitempty,oneof=PRIMARY_RATE SECONDARY_RATE"`
	CustomMarginPercent *decimal.Decimal `json:"custom_margin_percent"`
	CustomVatPercent    *decimal.Decimal `json:"custom_vat_percent"`
}

// UpdateProductRequest replaces the editable fields of a product. Stock is
// not part of it.
type UpdateProductRequest struct {
	SKU                 string           `json:"sku" binding:"required,min=1,max=50"`
	Name                string           `json:"name" binding:"required,min=1,max=200"`
	Category            string           `json:"category" binding:"max=100"`
	Supplier            string           `json:"supplier" binding:"max=200"`
	MinStock            int              `json:"min_stock" binding:"min=0"`
	Cost                decimal.Decimal  `json:"cost" binding:"decimal_gte0"`
	Freight             decimal.Decimal  `json:"freight" binding:"decimal_gte0"`
	CostBasis           string           `json:"cost_basis" binding:"omitempty,oneof=PRIMARY_RATE SECONDARY_RATE"`
	CustomMarginPercent *decimal.Decimal `json:"custom_margin_percent"`
	CustomVatPercent    *decimal.Decimal `json:"custom_vat_percent"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=sku name category stock created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product with its current prices
type ProductResponse struct {
	ID                  uuid.UUID         `json:"id"`
	SKU                 string            `json:"sku"`
	Name                string            `json:"name"`
	Category            string            `json:"category"`
	Supplier            string            `json:"supplier"`
	Stock               int               `json:"stock"`
	MinStock            int               `json:"min_stock"`
	LowStock            bool              `json:"low_stock"`
	Cost                decimal.Decimal   `json:"cost"`
	Freight             decimal.Decimal   `json:"freight"`
	CostBasis           string            `json:"cost_basis"`
	CustomMarginPercent *decimal.Decimal  `json:"custom_margin_percent,omitempty"`
	CustomVatPercent    *decimal.Decimal  `json:"custom_vat_percent,omitempty"`
	Prices              pricing.Breakdown `json:"prices"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
	Version             int               `json:"version"`

	LocalCurrency              valueobject.Currency `json:"local_currency"`
	FinalPriceDisplay          string               `json:"final_price_display"`
	PriceLocalPrimaryDisplay   string               `json:"price_local_primary_display"`
	PriceLocalSecondaryDisplay string               `json:"price_local_secondary_display"`
}

// PriceListItem is one row of the price list
type PriceListItem struct {
	ID                  uuid.UUID       `json:"id"`
	SKU                 string          `json:"sku"`
	Name                string          `json:"name"`
	Stock               int             `json:"stock"`
	FinalPriceUSD       decimal.Decimal `json:"final_price_usd"`
	PriceLocalPrimary   decimal.Decimal `json:"price_local_primary"`
	PriceLocalSecondary decimal.Decimal `json:"price_local_secondary"`

	LocalCurrency              valueobject.Currency `json:"local_currency"`
	FinalPriceDisplay          string               `json:"final_price_display"`
	PriceLocalPrimaryDisplay   string               `json:"price_local_primary_display"`
	PriceLocalSecondaryDisplay string               `json:"price_local_secondary_display"`
}

// ToProductResponse converts a product and its price breakdown to a response
func ToProductResponse(p *catalog.Product, prices pricing.Breakdown, display valueobject.Formatter) ProductResponse {
	return ProductResponse{
		ID:                  p.ID,
		SKU:                 p.SKU,
		Name:                p.Name,
		Category:            p.Category,
		Supplier:            p.Supplier,
		Stock:               p.Stock,
		MinStock:            p.MinStock,
		LowStock:            p.IsLowStock(),
		Cost:                p.Cost,
		Freight:             p.Freight,
		CostBasis:           string(p.CostBasis),
		CustomMarginPercent: p.CustomMarginPercent,
		CustomVatPercent:    p.CustomVatPercent,
		Prices:              prices,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
		Version:             p.Version,

		LocalCurrency:              display.LocalCurrency(),
		FinalPriceDisplay:          display.USD(prices.FinalPriceUSD),
		PriceLocalPrimaryDisplay:   display.Local(prices.PriceLocalPrimary),
		PriceLocalSecondaryDisplay: display.Local(prices.PriceLocalSecondary),
	}
}

// ToProductResponses prices every product with the same settings
func ToProductResponses(products []catalog.Product, settings pricing.Settings, display valueobject.Formatter) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i], products[i].Price(settings), display)
	}
	return responses
}

// ToPriceListItem rounds a product's prices to cents for display
func ToPriceListItem(p *catalog.Product, prices pricing.Breakdown, display valueobject.Formatter) PriceListItem {
	return PriceListItem{
		ID:                  p.ID,
		SKU:                 p.SKU,
		Name:                p.Name,
		Stock:               p.Stock,
		FinalPriceUSD:       valueobject.Round2(prices.FinalPriceUSD),
		PriceLocalPrimary:   valueobject.Round2(prices.PriceLocalPrimary),
		PriceLocalSecondary: valueobject.Round2(prices.PriceLocalSecondary),

		LocalCurrency:              display.LocalCurrency(),
		FinalPriceDisplay:          display.USD(prices.FinalPriceUSD),
		PriceLocalPrimaryDisplay:   display.Local(prices.PriceLocalPrimary),
		PriceLocalSecondaryDisplay: display.Local(prices.PriceLocalSecondary),
	}
}
