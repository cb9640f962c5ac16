package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusPartial   SaleStatus = "PARTIAL"
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusPartial, SaleStatusPending, SaleStatusCancelled:
		return true
	}
	return false
}

func saleStatusFor(p finance.PaymentStatus) SaleStatus {
	switch p {
	case finance.PaymentStatusPaid:
		return SaleStatusCompleted
	case finance.PaymentStatusPartial:
		return SaleStatusPartial
	default:
		return SaleStatusPending
	}
}

// SaleItem is what was sold, frozen at settlement
type SaleItem struct {
	ProductID    uuid.UUID       `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPriceUSD decimal.Decimal `json:"unit_price_usd"`
	UnitCostUSD  decimal.Decimal `json:"unit_cost_usd"`
}

// Amount is the line total
func (i SaleItem) Amount() decimal.Decimal {
	return i.UnitPriceUSD.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SaleItems are the lines of a sale
type SaleItems []SaleItem

// QuantitiesByProduct groups quantities per product id
func (s SaleItems) QuantitiesByProduct() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(s))
	for _, it := range s {
		out[it.ProductID] += it.Quantity
	}
	return out
}

// Total is the rounded sum of line totals
func (s SaleItems) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range s {
		sum = sum.Add(it.Amount())
	}
	return valueobject.Round2(sum)
}

// Sale is a settled cart. Its items only change through Amend, and it can be
// cancelled exactly once.
type Sale struct {
	shared.BaseAggregateRoot
	Number        string
	Date          time.Time
	Items         SaleItems
	TotalLocal    decimal.Decimal
	ExchangeRate  decimal.Decimal // primary rate at settlement
	PaymentMethod string
	ClientID      string
	SellerID      string
	SellerName    string
	Status        SaleStatus
	Ledger        finance.Ledger
	CancelledAt   *time.Time
	CancelReason  string
}

// NewSaleInput describes a settlement
type NewSaleInput struct {
	Number        string
	Lines         []CartLine
	PaymentMethod string
	ClientID      string
	// InitialPaymentUSD nil means paid in full
	InitialPaymentUSD *decimal.Decimal
	PrimaryRate       decimal.Decimal
	Actor             shared.Actor
	At                time.Time
}

// NewSale builds a sale from cart lines. Stock is not touched here; the
// caller moves it against the products.
func NewSale(in NewSaleInput) (*Sale, error) {
	if len(in.Lines) == 0 {
		return nil, shared.ErrEmptyCart
	}
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment method is required")
	}
	if in.At.IsZero() {
		in.At = time.Now()
	}

	items := make(SaleItems, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Quantity for %s must be positive", l.Name)
		}
		items = append(items, SaleItem{
			ProductID:    l.ProductID,
			SKU:          l.SKU,
			Name:         l.Name,
			Quantity:     l.Quantity,
			UnitPriceUSD: l.FinalPriceUSD,
			UnitCostUSD:  l.UnitCostUSD,
		})
	}

	total := items.Total()
	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            in.Number,
		Date:              in.At,
		Items:             items,
		TotalLocal:        valueobject.Round2(total.Mul(in.PrimaryRate)),
		ExchangeRate:      in.PrimaryRate,
		PaymentMethod:     method,
		ClientID:          strings.TrimSpace(in.ClientID),
		SellerID:          in.Actor.UserID,
		SellerName:        in.Actor.Username,
		Ledger:            finance.NewLedger(total),
	}

	paid := total
	if in.InitialPaymentUSD != nil {
		paid = *in.InitialPaymentUSD
	}
	if paid.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Initial payment cannot be negative")
	}
	if paid.IsPositive() {
		if _, err := s.Ledger.AppendPayment(paid, method, "", in.At); err != nil {
			return nil, err
		}
	}
	s.Status = saleStatusFor(s.Ledger.Status())
	s.AddDomainEvent(NewSaleSettledEvent(s))
	return s, nil
}

// TotalUSD is the amount owed for the sale
func (s *Sale) TotalUSD() decimal.Decimal {
	return s.Ledger.TotalUSD
}

// PaidAmountUSD is the sum of payments
func (s *Sale) PaidAmountUSD() decimal.Decimal {
	return s.Ledger.PaidAmountUSD
}

// IsCredit reports a sale not fully paid at settlement or since
func (s *Sale) IsCredit() bool {
	return s.Ledger.PaidAmountUSD.LessThan(s.Ledger.TotalUSD.Sub(valueobject.CentTolerance))
}

// IsCancelled returns true once the sale is cancelled
func (s *Sale) IsCancelled() bool {
	return s.Status == SaleStatusCancelled
}

// Amend replaces the items and recomputes the totals. Paid amount and
// status are left as they were, even when the new total no longer matches
// them. Stock is moved by the caller.
func (s *Sale) Amend(items []SaleItem) error {
	if s.IsCancelled() {
		return s.cancelledError()
	}
	if len(items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "A sale needs at least one item")
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return shared.NewDomainErrorf(shared.CodeInvalidInput, "Quantity for %s must be positive", it.Name)
		}
		if it.UnitPriceUSD.IsNegative() {
			return shared.NewDomainErrorf(shared.CodeInvalidInput, "Price for %s cannot be negative", it.Name)
		}
	}
	previous := s.Ledger.TotalUSD
	s.Items = append(SaleItems{}, items...)
	s.Ledger.TotalUSD = s.Items.Total()
	s.TotalLocal = valueobject.Round2(s.Ledger.TotalUSD.Mul(s.ExchangeRate))
	s.Touch()
	s.AddDomainEvent(NewSaleAmendedEvent(s, previous))
	return nil
}

// Cancel marks the sale cancelled. It returns false when the sale was
// already cancelled, in which case nothing changes.
func (s *Sale) Cancel(reason string, at time.Time) bool {
	if s.IsCancelled() {
		return false
	}
	if at.IsZero() {
		at = time.Now()
	}
	s.Status = SaleStatusCancelled
	s.CancelledAt = &at
	s.CancelReason = strings.TrimSpace(reason)
	s.Touch()
	s.AddDomainEvent(NewSaleCancelledEvent(s))
	return true
}

// RegisterPayment adds a payment against the outstanding debt
func (s *Sale) RegisterPayment(amount decimal.Decimal, method, note string, at time.Time) (finance.Payment, error) {
	if s.IsCancelled() {
		return finance.Payment{}, s.cancelledError()
	}
	p, err := s.Ledger.AppendPayment(amount, method, note, at)
	if err != nil {
		return finance.Payment{}, err
	}
	s.Status = saleStatusFor(s.Ledger.Status())
	s.Touch()
	s.AddDomainEvent(NewSalePaymentEvent(EventTypeSalePaymentRegistered, s, p))
	return p, nil
}

// RemovePayment deletes a payment; the debt grows back accordingly
func (s *Sale) RemovePayment(paymentID uuid.UUID) (finance.Payment, error) {
	if s.IsCancelled() {
		return finance.Payment{}, s.cancelledError()
	}
	p, err := s.Ledger.RemovePaymentByID(paymentID)
	if err != nil {
		return finance.Payment{}, err
	}
	s.Status = saleStatusFor(s.Ledger.Status())
	s.Touch()
	s.AddDomainEvent(NewSalePaymentEvent(EventTypeSalePaymentRemoved, s, p))
	return p, nil
}

func (s *Sale) cancelledError() error {
	return shared.NewDomainErrorf(shared.CodeSaleCancelled, "Sale %s is cancelled", s.Number)
}
