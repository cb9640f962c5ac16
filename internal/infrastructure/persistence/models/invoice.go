package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate.
// SupplierKey is the lower-cased supplier name and, with Number, is unique.
type InvoiceModel struct {
	AggregateModel
	Number          string                `gorm:"type:varchar(64);not null;uniqueIndex:idx_invoice_number_supplier,priority:1"`
	Supplier        string                `gorm:"type:varchar(200);not null"`
	SupplierKey     string                `gorm:"type:varchar(200);not null;uniqueIndex:idx_invoice_number_supplier,priority:2;index"`
	DateIssue       time.Time             `gorm:"not null;index"`
	DateDue         *time.Time            `gorm:"index"`
	FreightTotalUSD decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	SubtotalUSD     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TotalUSD        decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmountUSD   decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	CostBasis       pricing.CostBasis     `gorm:"type:varchar(20);not null"`
	Status          finance.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	Payments        finance.Payments      `gorm:"type:text"`
	Items           []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is one received line
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Line        int             `gorm:"not null"`
	SKU         string          `gorm:"type:varchar(64);not null;index"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitCostUSD decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MinStock    *int
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// SupplierKey normalizes a supplier name for case-insensitive matching
func SupplierKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ToDomain converts the model and its loaded items to a domain Invoice
func (m *InvoiceModel) ToDomain() *trade.Invoice {
	items := make(trade.InvoiceItems, len(m.Items))
	for i, it := range m.Items {
		items[i] = trade.InvoiceItem{
			SKU:         it.SKU,
			Name:        it.Name,
			Quantity:    it.Quantity,
			UnitCostUSD: it.UnitCostUSD,
			MinStock:    it.MinStock,
		}
	}
	payments := m.Payments
	if payments == nil {
		payments = finance.Payments{}
	}
	return &trade.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		Supplier:          m.Supplier,
		DateIssue:         m.DateIssue,
		DateDue:           m.DateDue,
		Items:             items,
		FreightTotalUSD:   m.FreightTotalUSD,
		SubtotalUSD:       m.SubtotalUSD,
		CostBasis:         m.CostBasis,
		Status:            m.Status,
		Ledger: finance.Ledger{
			TotalUSD:      m.TotalUSD,
			PaidAmountUSD: m.PaidAmountUSD,
			Payments:      payments,
		},
	}
}

// FromDomain populates the model, items included, from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *trade.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.Number = inv.Number
	m.Supplier = inv.Supplier
	m.SupplierKey = SupplierKey(inv.Supplier)
	m.DateIssue = inv.DateIssue
	m.DateDue = inv.DateDue
	m.FreightTotalUSD = inv.FreightTotalUSD
	m.SubtotalUSD = inv.SubtotalUSD
	m.TotalUSD = inv.Ledger.TotalUSD
	m.PaidAmountUSD = inv.Ledger.PaidAmountUSD
	m.CostBasis = inv.CostBasis
	m.Status = inv.Status
	m.Payments = inv.Ledger.Payments

	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, it := range inv.Items {
		m.Items[i] = InvoiceItemModel{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Line:        i + 1,
			SKU:         it.SKU,
			Name:        it.Name,
			Quantity:    it.Quantity,
			UnitCostUSD: it.UnitCostUSD,
			MinStock:    it.MinStock,
		}
	}
}

// InvoiceModelFromDomain creates a model from a domain Invoice
func InvoiceModelFromDomain(inv *trade.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
