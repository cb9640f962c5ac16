package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CentTolerance is the slack allowed when comparing a paid amount with a
// total, absorbing the rounding of individual payments.
var CentTolerance = decimal.RequireFromString("0.01")

// Round2 rounds half away from zero to cents
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Currency is an ISO 4217 code
type Currency string

const (
	USD Currency = "USD"
	// VES is the default local currency
	VES Currency = "VES"
)

var currencySymbols = map[Currency]string{
	USD:   "$",
	VES:   "Bs.",
	"EUR": "€",
	"COP": "COL$",
	"ARS": "AR$",
}

var currencyLocales = map[Currency]language.Tag{
	USD: language.AmericanEnglish,
}

// ParseCurrency validates an ISO 4217 code
func ParseCurrency(code string) (Currency, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", fmt.Errorf("invalid currency code %q: %w", code, err)
	}
	return Currency(unit.String()), nil
}

// Symbol returns the display symbol, falling back to the ISO code
func (c Currency) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return string(c)
}

func (c Currency) locale() language.Tag {
	if tag, ok := currencyLocales[c]; ok {
		return tag
	}
	return language.Spanish
}

// Money is an immutable amount in a currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a Money value
func NewMoney(amount decimal.Decimal, cur Currency) Money {
	return Money{amount: amount, currency: cur}
}

// USDAmount creates a Money value in USD
func USDAmount(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: USD}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }

// Add sums two amounts of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub subtracts two amounts of the same currency
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract %s from %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// MultiplyByInt scales the amount by a quantity
func (m Money) MultiplyByInt(n int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n))), currency: m.currency}
}

// Round2 rounds the amount to cents
func (m Money) Round2() Money {
	return Money{amount: Round2(m.amount), currency: m.currency}
}

// Convert multiplies by rate (target units per source unit)
func (m Money) Convert(rate decimal.Decimal, to Currency) Money {
	return Money{amount: m.amount.Mul(rate), currency: to}
}

// Equals compares amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Format renders the amount rounded to cents with the currency's symbol and
// digit grouping, e.g. "$1,234.50" or "Bs. 1.234.567,50".
//
// Digits come from the decimal itself; only the whole part goes through the
// locale printer, as an integer, so no binary float is involved.
func (m Money) Format() string {
	rounded := Round2(m.amount)
	whole := rounded.Abs().Truncate(0)
	cents := rounded.Abs().Sub(whole).Shift(2).IntPart()

	p := message.NewPrinter(m.currency.locale())
	digits := p.Sprint(number.Decimal(whole.IntPart())) + decimalSeparator(p) + fmt.Sprintf("%02d", cents)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	if m.currency == USD {
		return sign + m.currency.Symbol() + digits
	}
	return sign + m.currency.Symbol() + " " + digits
}

// decimalSeparator asks the locale how it writes one half
func decimalSeparator(p *message.Printer) string {
	half := p.Sprint(number.Decimal(0.5, number.MinFractionDigits(1)))
	return strings.TrimSuffix(strings.TrimPrefix(half, "0"), "5")
}

// String returns "12.34 USD"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.StringFixed(2),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	return nil
}

// Value stores the amount only; the column implies the currency
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan reads an amount, defaulting the currency to USD
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = decimal.Zero
		m.currency = USD
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case float64:
		s = decimal.NewFromFloat(v).String()
	case int64:
		s = decimal.NewFromInt(v).String()
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = USD
	}
	return nil
}

// Formatter renders display strings for USD and the configured local
// currency. The zero value formats local amounts in VES.
type Formatter struct {
	local Currency
}

// NewFormatter returns a Formatter for the given local currency
func NewFormatter(local Currency) Formatter {
	return Formatter{local: local}
}

// LocalCurrency returns the currency local amounts are shown in
func (f Formatter) LocalCurrency() Currency {
	if f.local == "" {
		return VES
	}
	return f.local
}

// USD formats an amount in dollars, e.g. "$45.24"
func (f Formatter) USD(amount decimal.Decimal) string {
	return USDAmount(amount).Format()
}

// Local formats an amount already expressed in local currency
func (f Formatter) Local(amount decimal.Decimal) string {
	return NewMoney(amount, f.LocalCurrency()).Format()
}
