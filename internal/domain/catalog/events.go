package catalog

import (
	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
)

const AggregateTypeProduct = "Product"

const (
	EventTypeProductCreated    = "ProductCreated"
	EventTypeStockReceived     = "StockReceived"
	EventTypeStockBelowMinimum = "StockBelowMinimum"
)

// ProductCreatedEvent is raised for manual entries and new invoice SKUs
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
}

func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Stock:           p.Stock,
	}
}

// StockReceivedEvent is raised when an invoice line lands on a product
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	NewStock  int       `json:"new_stock"`
}

func NewStockReceivedEvent(p *Product, qty int) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Quantity:        qty,
		NewStock:        p.Stock,
	}
}

// StockBelowMinimumEvent is raised when a sale takes stock down to the
// reorder threshold
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID `json:"product_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	CurrentStock int       `json:"current_stock"`
	MinStock     int       `json:"min_stock"`
}

func NewStockBelowMinimumEvent(p *Product) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		CurrentStock:    p.Stock,
		MinStock:        p.MinStock,
	}
}
