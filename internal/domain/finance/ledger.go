// Package finance holds the debt ledger shared by customer sales
// (receivables) and supplier invoices (payables).
package finance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment state derived from paid and total amounts
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPending PaymentStatus = "PENDING"
)

// DeriveStatus applies the one cent tolerance: anything within a cent of
// the total counts as paid.
func DeriveStatus(paid, total decimal.Decimal) PaymentStatus {
	threshold := total.Sub(valueobject.CentTolerance)
	switch {
	case paid.GreaterThanOrEqual(threshold):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

// Well known payment methods. Method is free text; these are the values the
// point of sale offers.
const (
	MethodCash          = "CASH"
	MethodTransfer      = "TRANSFER"
	MethodCard          = "CARD"
	MethodMobilePayment = "MOBILE_PAYMENT"
	MethodCredit        = "CREDIT"
)

// Payment is one entry of a debt ledger
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	Date      time.Time       `json:"date"`
	AmountUSD decimal.Decimal `json:"amount_usd"`
	Method    string          `json:"method"`
	Note      string          `json:"note,omitempty"`
}

// Payments is stored as a JSON column
type Payments []Payment

// Value implements driver.Valuer
func (p Payments) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (p *Payments) Scan(value any) error {
	if value == nil {
		*p = Payments{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan Payments: unsupported type")
	}
	if len(raw) == 0 {
		*p = Payments{}
		return nil
	}
	return json.Unmarshal(raw, p)
}

// Sum adds up every payment amount
func (p Payments) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, pay := range p {
		sum = sum.Add(pay.AmountUSD)
	}
	return sum
}

// Ledger tracks what is owed against what was paid. PaidAmountUSD always
// equals the sum of Payments.
type Ledger struct {
	TotalUSD      decimal.Decimal
	PaidAmountUSD decimal.Decimal
	Payments      Payments
}

// NewLedger returns an empty ledger for a debt of total
func NewLedger(total decimal.Decimal) Ledger {
	return Ledger{
		TotalUSD:      total,
		PaidAmountUSD: decimal.Zero,
		Payments:      Payments{},
	}
}

// Status derives the payment status
func (l *Ledger) Status() PaymentStatus {
	return DeriveStatus(l.PaidAmountUSD, l.TotalUSD)
}

// Remaining is the outstanding debt, never below zero
func (l *Ledger) Remaining() decimal.Decimal {
	r := l.TotalUSD.Sub(l.PaidAmountUSD)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// AppendPayment records a payment rounded to cents, so the paid amount stays
// the exact sum of stored payments. The amount may exceed the remaining debt
// by at most one cent.
func (l *Ledger) AppendPayment(amount decimal.Decimal, method, note string, at time.Time) (Payment, error) {
	amount = valueobject.Round2(amount)
	if !amount.IsPositive() {
		return Payment{}, shared.NewDomainError(shared.CodeInvalidAmount, "Payment amount must be at least one cent")
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return Payment{}, shared.NewDomainError(shared.CodeInvalidInput, "Payment method is required")
	}
	debt := l.TotalUSD.Sub(l.PaidAmountUSD)
	if amount.GreaterThan(debt.Add(valueobject.CentTolerance)) {
		return Payment{}, shared.NewDomainErrorf(shared.CodeOverpayment,
			"Payment of %s exceeds the outstanding debt of %s",
			amount.StringFixed(2), valueobject.Round2(debt).StringFixed(2)).
			WithDetail("amount", amount.StringFixed(2)).
			WithDetail("debt", valueobject.Round2(debt).StringFixed(2))
	}
	if at.IsZero() {
		at = time.Now()
	}
	pay := Payment{
		ID:        uuid.New(),
		Date:      at,
		AmountUSD: amount,
		Method:    method,
		Note:      strings.TrimSpace(note),
	}
	l.Payments = append(l.Payments, pay)
	l.recompute()
	return pay, nil
}

// RemovePayment deletes the payment at index and recomputes the paid amount
func (l *Ledger) RemovePayment(index int) (Payment, error) {
	if index < 0 || index >= len(l.Payments) {
		return Payment{}, shared.NewDomainErrorf(shared.CodePaymentNotFound, "No payment at position %d", index)
	}
	removed := l.Payments[index]
	remaining := make(Payments, 0, len(l.Payments)-1)
	remaining = append(remaining, l.Payments[:index]...)
	remaining = append(remaining, l.Payments[index+1:]...)
	l.Payments = remaining
	l.recompute()
	return removed, nil
}

// RemovePaymentByID deletes the payment with the given id
func (l *Ledger) RemovePaymentByID(id uuid.UUID) (Payment, error) {
	for i, p := range l.Payments {
		if p.ID == id {
			return l.RemovePayment(i)
		}
	}
	return Payment{}, shared.NewDomainErrorf(shared.CodePaymentNotFound, "Payment %s not found", id)
}

func (l *Ledger) recompute() {
	l.PaidAmountUSD = valueobject.Round2(l.Payments.Sum())
}
