package pricing

import (
	"time"

	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// UpdateSettingsRequest is a partial update; nil fields keep their value
type UpdateSettingsRequest struct {
	ExchangeRatePrimary   *decimal.Decimal `json:"exchange_rate_primary"`
	ExchangeRateSecondary *decimal.Decimal `json:"exchange_rate_secondary"`
	DefaultMarginPercent  *decimal.Decimal `json:"default_margin_percent"`
	DefaultVatPercent     *decimal.Decimal `json:"default_vat_percent"`
}

// SettingsResponse represents the pricing settings in API responses
type SettingsResponse struct {
	ExchangeRatePrimary   decimal.Decimal `json:"exchange_rate_primary"`
	ExchangeRateSecondary decimal.Decimal `json:"exchange_rate_secondary"`
	DefaultMarginPercent  decimal.Decimal `json:"default_margin_percent"`
	DefaultVatPercent     decimal.Decimal `json:"default_vat_percent"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// QuoteRequest prices an arbitrary cost without a stored product
type QuoteRequest struct {
	Cost                decimal.Decimal  `json:"cost" binding:"decimal_gte0"`
	Freight             decimal.Decimal  `json:"freight" binding:"decimal_gte0"`
	CostBasis           string           `json:"cost_basis" binding:"omitempty,oneof=PRIMARY_RATE SECONDARY_RATE"`
	CustomMarginPercent *decimal.Decimal `json:"custom_margin_percent"`
	CustomVatPercent    *decimal.Decimal `json:"custom_vat_percent"`
}

// ToSettingsResponse converts domain settings to a response
func ToSettingsResponse(s pricing.Settings) SettingsResponse {
	return SettingsResponse{
		ExchangeRatePrimary:   s.ExchangeRatePrimary,
		ExchangeRateSecondary: s.ExchangeRateSecondary,
		DefaultMarginPercent:  s.DefaultMarginPercent,
		DefaultVatPercent:     s.DefaultVatPercent,
		UpdatedAt:             s.UpdatedAt,
	}
}
