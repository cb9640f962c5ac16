// Package pricing turns a product's acquisition cost into sale prices in USD
// and in local currency at the two tracked exchange rates.
package pricing

import (
	"context"
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CostBasis names the exchange rate a unit of inventory was acquired at
type CostBasis string

const (
	CostBasisPrimary   CostBasis = "PRIMARY_RATE"
	CostBasisSecondary CostBasis = "SECONDARY_RATE"
)

// IsValid returns true for a known cost basis
func (b CostBasis) IsValid() bool {
	return b == CostBasisPrimary || b == CostBasisSecondary
}

// ParseCostBasis maps an empty value to the primary rate
func ParseCostBasis(s string) (CostBasis, error) {
	if s == "" {
		return CostBasisPrimary, nil
	}
	b := CostBasis(s)
	if !b.IsValid() {
		return "", shared.NewDomainErrorf(shared.CodeInvalidInput, "Unknown cost basis %q", s)
	}
	return b, nil
}

// Settings holds the global pricing configuration. Rates are local currency
// units per USD.
type Settings struct {
	ExchangeRatePrimary   decimal.Decimal
	ExchangeRateSecondary decimal.Decimal
	DefaultMarginPercent  decimal.Decimal
	DefaultVatPercent     decimal.Decimal
	UpdatedAt             time.Time
}

// DefaultSettings returns rate 1 and no margin or tax
func DefaultSettings() Settings {
	return Settings{
		ExchangeRatePrimary:   decimal.NewFromInt(1),
		ExchangeRateSecondary: decimal.NewFromInt(1),
		DefaultMarginPercent:  decimal.Zero,
		DefaultVatPercent:     decimal.Zero,
	}
}

// Validate checks settings before they are stored. Calculate never relies
// on it and copes with invalid values on its own.
func (s Settings) Validate() error {
	if !s.ExchangeRatePrimary.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Primary exchange rate must be positive")
	}
	if !s.ExchangeRateSecondary.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Secondary exchange rate must be positive")
	}
	if s.DefaultMarginPercent.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Default margin cannot be negative")
	}
	if s.DefaultVatPercent.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Default VAT cannot be negative")
	}
	return nil
}

// SettingsRepository persists the settings singleton
type SettingsRepository interface {
	// Get returns the stored settings or shared.ErrNotFound
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}
