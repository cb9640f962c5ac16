package trade

import (
	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeInvoice = "Invoice"

const (
	EventTypeInvoiceReceived          = "InvoiceReceived"
	EventTypeInvoiceItemsEdited       = "InvoiceItemsEdited"
	EventTypeInvoicePaymentRegistered = "InvoicePaymentRegistered"
	EventTypeInvoicePaymentRemoved    = "InvoicePaymentRemoved"
)

// InvoiceReceivedEvent is raised when merchandise is received
type InvoiceReceivedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Number    string          `json:"number"`
	Supplier  string          `json:"supplier"`
	TotalUSD  decimal.Decimal `json:"total_usd"`
	Units     int             `json:"units"`
}

func NewInvoiceReceivedEvent(inv *Invoice) *InvoiceReceivedEvent {
	return &InvoiceReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceReceived, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		Number:          inv.Number,
		Supplier:        inv.Supplier,
		TotalUSD:        inv.TotalUSD(),
		Units:           inv.Items.TotalQuantity(),
	}
}

// InvoiceItemsEditedEvent is raised on bookkeeping corrections
type InvoiceItemsEditedEvent struct {
	shared.BaseDomainEvent
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	PreviousTotalUSD decimal.Decimal `json:"previous_total_usd"`
	TotalUSD         decimal.Decimal `json:"total_usd"`
}

func NewInvoiceItemsEditedEvent(inv *Invoice, previous decimal.Decimal) *InvoiceItemsEditedEvent {
	return &InvoiceItemsEditedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeInvoiceItemsEdited, AggregateTypeInvoice, inv.ID),
		InvoiceID:        inv.ID,
		PreviousTotalUSD: previous,
		TotalUSD:         inv.TotalUSD(),
	}
}

// InvoicePaymentEvent is raised when the payable ledger changes
type InvoicePaymentEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID             `json:"invoice_id"`
	PaymentID uuid.UUID             `json:"payment_id"`
	AmountUSD decimal.Decimal       `json:"amount_usd"`
	PaidUSD   decimal.Decimal       `json:"paid_usd"`
	Status    finance.PaymentStatus `json:"status"`
}

func NewInvoicePaymentEvent(eventType string, inv *Invoice, p finance.Payment) *InvoicePaymentEvent {
	return &InvoicePaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		PaymentID:       p.ID,
		AmountUSD:       p.AmountUSD,
		PaidUSD:         inv.Ledger.PaidAmountUSD,
		Status:          inv.Status,
	}
}
