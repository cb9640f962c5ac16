package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceItem is one received line of a supplier invoice
type InvoiceItem struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitCostUSD decimal.Decimal `json:"unit_cost_usd"`
	MinStock    *int            `json:"min_stock,omitempty"`
}

// Amount is quantity times unit cost
func (i InvoiceItem) Amount() decimal.Decimal {
	return i.UnitCostUSD.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// InvoiceItems are the lines of an invoice
type InvoiceItems []InvoiceItem

// Subtotal is the sum of line amounts
func (items InvoiceItems) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount())
	}
	return sum
}

// TotalQuantity is the number of units received
func (items InvoiceItems) TotalQuantity() int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// FreightScale is the number of decimal places unit freight is kept at. It
// matches the scale of the product freight column.
const FreightScale = 4

// UnitFreight spreads freight evenly over every unit of items, rounded to
// FreightScale places; zero when there is nothing to spread it over.
func UnitFreight(freight decimal.Decimal, items InvoiceItems) decimal.Decimal {
	qty := items.TotalQuantity()
	if qty <= 0 {
		return decimal.Zero
	}
	return freight.Div(decimal.NewFromInt(int64(qty))).Round(FreightScale)
}

// Invoice is a supplier invoice with its own payable ledger. The stock
// effects of its items are applied once, at reception.
type Invoice struct {
	shared.BaseAggregateRoot
	Number          string
	Supplier        string
	DateIssue       time.Time
	DateDue         *time.Time
	Items           InvoiceItems
	FreightTotalUSD decimal.Decimal
	SubtotalUSD     decimal.Decimal
	CostBasis       pricing.CostBasis
	Status          finance.PaymentStatus
	Ledger          finance.Ledger
}

// NewInvoiceInput is the header and lines of a received invoice
type NewInvoiceInput struct {
	Number          string
	Supplier        string
	DateIssue       time.Time
	DateDue         *time.Time
	Items           []InvoiceItem
	FreightTotalUSD decimal.Decimal
	CostBasis       pricing.CostBasis
}

// NewInvoice validates and totals an invoice. Products and suppliers are
// reconciled by the caller.
func NewInvoice(in NewInvoiceInput) (*Invoice, error) {
	number := strings.TrimSpace(in.Number)
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invoice number is required")
	}
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier is required")
	}
	items, err := normalizeInvoiceItems(in.Items)
	if err != nil {
		return nil, err
	}
	if in.FreightTotalUSD.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Freight cannot be negative")
	}
	basis := in.CostBasis
	if !basis.IsValid() {
		basis = pricing.CostBasisPrimary
	}
	if in.DateIssue.IsZero() {
		in.DateIssue = time.Now()
	}
	if in.DateDue != nil && in.DateDue.Before(in.DateIssue) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Due date cannot be before the issue date")
	}

	subtotal := items.Subtotal()
	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Supplier:          supplier,
		DateIssue:         in.DateIssue,
		DateDue:           in.DateDue,
		Items:             items,
		FreightTotalUSD:   in.FreightTotalUSD,
		SubtotalUSD:       subtotal,
		CostBasis:         basis,
		Ledger:            finance.NewLedger(subtotal.Add(in.FreightTotalUSD)),
	}
	inv.Status = inv.Ledger.Status()
	inv.AddDomainEvent(NewInvoiceReceivedEvent(inv))
	return inv, nil
}

// TotalUSD is subtotal plus freight
func (inv *Invoice) TotalUSD() decimal.Decimal {
	return inv.Ledger.TotalUSD
}

// UnitFreight is the freight share of each received unit
func (inv *Invoice) UnitFreight() decimal.Decimal {
	return UnitFreight(inv.FreightTotalUSD, inv.Items)
}

// Matches reports whether the invoice has this number (exact) from this
// supplier (case-insensitive)
func (inv *Invoice) Matches(number, supplier string) bool {
	return inv.Number == strings.TrimSpace(number) &&
		strings.EqualFold(inv.Supplier, strings.TrimSpace(supplier))
}

// IsOverdue reports an unpaid invoice past its due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.DateDue != nil && now.After(*inv.DateDue) && inv.Status != finance.PaymentStatusPaid
}

// EditLineItems corrects the invoice record. Only subtotal and total are
// recomputed; products that received these items are not adjusted and the
// stored status is kept.
func (inv *Invoice) EditLineItems(items []InvoiceItem, freight decimal.Decimal) error {
	normalized, err := normalizeInvoiceItems(items)
	if err != nil {
		return err
	}
	if freight.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Freight cannot be negative")
	}
	previous := inv.Ledger.TotalUSD
	inv.Items = normalized
	inv.FreightTotalUSD = freight
	inv.SubtotalUSD = normalized.Subtotal()
	inv.Ledger.TotalUSD = inv.SubtotalUSD.Add(freight)
	inv.Touch()
	inv.AddDomainEvent(NewInvoiceItemsEditedEvent(inv, previous))
	return nil
}

// RegisterPayment pays down the invoice
func (inv *Invoice) RegisterPayment(amount decimal.Decimal, method, note string, at time.Time) (finance.Payment, error) {
	p, err := inv.Ledger.AppendPayment(amount, method, note, at)
	if err != nil {
		return finance.Payment{}, err
	}
	inv.Status = inv.Ledger.Status()
	inv.Touch()
	inv.AddDomainEvent(NewInvoicePaymentEvent(EventTypeInvoicePaymentRegistered, inv, p))
	return p, nil
}

// RemovePayment deletes a payment and re-derives the status
func (inv *Invoice) RemovePayment(paymentID uuid.UUID) (finance.Payment, error) {
	p, err := inv.Ledger.RemovePaymentByID(paymentID)
	if err != nil {
		return finance.Payment{}, err
	}
	inv.Status = inv.Ledger.Status()
	inv.Touch()
	inv.AddDomainEvent(NewInvoicePaymentEvent(EventTypeInvoicePaymentRemoved, inv, p))
	return p, nil
}

// Outstanding is the rounded remaining debt
func (inv *Invoice) Outstanding() decimal.Decimal {
	return valueobject.Round2(inv.Ledger.Remaining())
}

func normalizeInvoiceItems(items []InvoiceItem) (InvoiceItems, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "An invoice needs at least one item")
	}
	out := make(InvoiceItems, 0, len(items))
	for i, it := range items {
		it.SKU = catalog.NormalizeSKU(it.SKU)
		it.Name = strings.TrimSpace(it.Name)
		if it.SKU == "" {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Item %d has no SKU", i+1)
		}
		if it.Quantity <= 0 {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Quantity for %s must be positive", it.SKU)
		}
		if it.UnitCostUSD.IsNegative() {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Unit cost for %s cannot be negative", it.SKU)
		}
		if it.MinStock != nil && *it.MinStock < 0 {
			return nil, shared.NewDomainErrorf(shared.CodeInvalidInput, "Minimum stock for %s cannot be negative", it.SKU)
		}
		if it.Name == "" {
			it.Name = it.SKU
		}
		out = append(out, it)
	}
	return out, nil
}
