package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate. Lines live in
// sale_items; payments are a JSON column.
type SaleModel struct {
	AggregateModel
	Number        string           `gorm:"type:varchar(32);not null;uniqueIndex"`
	Date          time.Time        `gorm:"not null;index"`
	TotalUSD      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TotalLocal    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ExchangeRate  decimal.Decimal  `gorm:"type:decimal(18,6);not null;default:1"`
	PaidAmountUSD decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethod string           `gorm:"type:varchar(32);not null"`
	ClientID      string           `gorm:"type:varchar(100);index"`
	SellerID      string           `gorm:"type:varchar(100)"`
	SellerName    string           `gorm:"type:varchar(200)"`
	Status        trade.SaleStatus `gorm:"type:varchar(20);not null;index"`
	Payments      finance.Payments `gorm:"type:text"`
	CancelledAt   *time.Time
	CancelReason  string          `gorm:"type:varchar(500)"`
	Items         []SaleItemModel `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is one line of a sale
type SaleItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Line         int             `gorm:"not null"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU          string          `gorm:"type:varchar(64);not null"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Quantity     int             `gorm:"not null"`
	UnitPriceUSD decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCostUSD  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// SaleSequenceModel is a named counter for human readable numbers
type SaleSequenceModel struct {
	Name  string `gorm:"type:varchar(32);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SaleSequenceModel) TableName() string {
	return "sale_sequences"
}

// ToDomain converts the model and its loaded items to a domain Sale
func (m *SaleModel) ToDomain() *trade.Sale {
	items := make(trade.SaleItems, len(m.Items))
	for i, it := range m.Items {
		items[i] = trade.SaleItem{
			ProductID:    it.ProductID,
			SKU:          it.SKU,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPriceUSD: it.UnitPriceUSD,
			UnitCostUSD:  it.UnitCostUSD,
		}
	}
	payments := m.Payments
	if payments == nil {
		payments = finance.Payments{}
	}
	return &trade.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		Date:              m.Date,
		Items:             items,
		TotalLocal:        m.TotalLocal,
		ExchangeRate:      m.ExchangeRate,
		PaymentMethod:     m.PaymentMethod,
		ClientID:          m.ClientID,
		SellerID:          m.SellerID,
		SellerName:        m.SellerName,
		Status:            m.Status,
		Ledger: finance.Ledger{
			TotalUSD:      m.TotalUSD,
			PaidAmountUSD: m.PaidAmountUSD,
			Payments:      payments,
		},
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
	}
}

// FromDomain populates the model, items included, from a domain Sale
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Number = s.Number
	m.Date = s.Date
	m.TotalUSD = s.Ledger.TotalUSD
	m.TotalLocal = s.TotalLocal
	m.ExchangeRate = s.ExchangeRate
	m.PaidAmountUSD = s.Ledger.PaidAmountUSD
	m.PaymentMethod = s.PaymentMethod
	m.ClientID = s.ClientID
	m.SellerID = s.SellerID
	m.SellerName = s.SellerName
	m.Status = s.Status
	m.Payments = s.Ledger.Payments
	m.CancelledAt = s.CancelledAt
	m.CancelReason = s.CancelReason

	m.Items = make([]SaleItemModel, len(s.Items))
	for i, it := range s.Items {
		m.Items[i] = SaleItemModel{
			ID:           uuid.New(),
			SaleID:       s.ID,
			Line:         i + 1,
			ProductID:    it.ProductID,
			SKU:          it.SKU,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPriceUSD: it.UnitPriceUSD,
			UnitCostUSD:  it.UnitCostUSD,
		}
	}
}

// SaleModelFromDomain creates a model from a domain Sale
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
