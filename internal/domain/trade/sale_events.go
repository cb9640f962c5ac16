package trade

import (
	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeSale = "Sale"

const (
	EventTypeSaleSettled           = "SaleSettled"
	EventTypeSaleAmended           = "SaleAmended"
	EventTypeSaleCancelled         = "SaleCancelled"
	EventTypeSalePaymentRegistered = "SalePaymentRegistered"
	EventTypeSalePaymentRemoved    = "SalePaymentRemoved"
)

// SaleSettledEvent is raised when a cart becomes a sale
type SaleSettledEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	Number     string          `json:"number"`
	TotalUSD   decimal.Decimal `json:"total_usd"`
	PaidUSD    decimal.Decimal `json:"paid_usd"`
	ItemCount  int             `json:"item_count"`
	IsCredit   bool            `json:"is_credit"`
	SellerName string          `json:"seller_name,omitempty"`
}

func NewSaleSettledEvent(s *Sale) *SaleSettledEvent {
	return &SaleSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleSettled, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Number:          s.Number,
		TotalUSD:        s.TotalUSD(),
		PaidUSD:         s.PaidAmountUSD(),
		ItemCount:       len(s.Items),
		IsCredit:        s.IsCredit(),
		SellerName:      s.SellerName,
	}
}

// SaleAmendedEvent is raised when a sale's items are edited
type SaleAmendedEvent struct {
	shared.BaseDomainEvent
	SaleID           uuid.UUID       `json:"sale_id"`
	PreviousTotalUSD decimal.Decimal `json:"previous_total_usd"`
	TotalUSD         decimal.Decimal `json:"total_usd"`
}

func NewSaleAmendedEvent(s *Sale, previous decimal.Decimal) *SaleAmendedEvent {
	return &SaleAmendedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSaleAmended, AggregateTypeSale, s.ID),
		SaleID:           s.ID,
		PreviousTotalUSD: previous,
		TotalUSD:         s.TotalUSD(),
	}
}

// SaleCancelledEvent is raised once per sale
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
	SaleID uuid.UUID `json:"sale_id"`
	Number string    `json:"number"`
	Reason string    `json:"reason,omitempty"`
}

func NewSaleCancelledEvent(s *Sale) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCancelled, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Number:          s.Number,
		Reason:          s.CancelReason,
	}
}

// SalePaymentEvent is raised when a payment is added to or removed from a sale
type SalePaymentEvent struct {
	shared.BaseDomainEvent
	SaleID    uuid.UUID       `json:"sale_id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	AmountUSD decimal.Decimal `json:"amount_usd"`
	PaidUSD   decimal.Decimal `json:"paid_usd"`
	Status    SaleStatus      `json:"status"`
}

func NewSalePaymentEvent(eventType string, s *Sale, p finance.Payment) *SalePaymentEvent {
	return &SalePaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		PaymentID:       p.ID,
		AmountUSD:       p.AmountUSD,
		PaidUSD:         s.PaidAmountUSD(),
		Status:          s.Status,
	}
}
