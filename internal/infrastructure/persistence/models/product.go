package models

import (
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	SKU                 string            `gorm:"type:varchar(64);not null;index"`
	Name                string            `gorm:"type:varchar(200);not null"`
	Category            string            `gorm:"type:varchar(100);not null;default:'General';index"`
	Supplier            string            `gorm:"type:varchar(200)"`
	Stock               int               `gorm:"not null;default:0"`
	MinStock            int               `gorm:"not null;default:0"`
	Cost                decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Freight             decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	CostBasis           pricing.CostBasis `gorm:"type:varchar(20);not null;default:'PRIMARY_RATE'"`
	CustomMarginPercent *decimal.Decimal  `gorm:"type:decimal(9,4)"`
	CustomVatPercent    *decimal.Decimal  `gorm:"type:decimal(9,4)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		SKU:                 m.SKU,
		Name:                m.Name,
		Category:            m.Category,
		Supplier:            m.Supplier,
		Stock:               m.Stock,
		MinStock:            m.MinStock,
		Cost:                m.Cost,
		Freight:             m.Freight,
		CostBasis:           m.CostBasis,
		CustomMarginPercent: m.CustomMarginPercent,
		CustomVatPercent:    m.CustomVatPercent,
	}
}

// FromDomain populates the model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Name = p.Name
	m.Category = p.Category
	m.Supplier = p.Supplier
	m.Stock = p.Stock
	m.MinStock = p.MinStock
	m.Cost = p.Cost
	m.Freight = p.Freight
	m.CostBasis = p.CostBasis
	m.CustomMarginPercent = p.CustomMarginPercent
	m.CustomVatPercent = p.CustomVatPercent
}

// ProductModelFromDomain creates a model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
