package models

import (
	"time"

	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// SettingsRowID is the id of the only pricing settings row
const SettingsRowID = 1

// PricingSettingsModel is the singleton row holding the pricing settings
type PricingSettingsModel struct {
	ID                    uint            `gorm:"primaryKey;autoIncrement:false"`
	ExchangeRatePrimary   decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	ExchangeRateSecondary decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	DefaultMarginPercent  decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	DefaultVatPercent     decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	UpdatedAt             time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PricingSettingsModel) TableName() string {
	return "pricing_settings"
}

// ToDomain converts the row to domain settings
func (m *PricingSettingsModel) ToDomain() *pricing.Settings {
	return &pricing.Settings{
		ExchangeRatePrimary:   m.ExchangeRatePrimary,
		ExchangeRateSecondary: m.ExchangeRateSecondary,
		DefaultMarginPercent:  m.DefaultMarginPercent,
		DefaultVatPercent:     m.DefaultVatPercent,
		UpdatedAt:             m.UpdatedAt,
	}
}

// PricingSettingsModelFromDomain builds the singleton row
func PricingSettingsModelFromDomain(s *pricing.Settings) *PricingSettingsModel {
	return &PricingSettingsModel{
		ID:                    SettingsRowID,
		ExchangeRatePrimary:   s.ExchangeRatePrimary,
		ExchangeRateSecondary: s.ExchangeRateSecondary,
		DefaultMarginPercent:  s.DefaultMarginPercent,
		DefaultVatPercent:     s.DefaultVatPercent,
		UpdatedAt:             s.UpdatedAt,
	}
}
