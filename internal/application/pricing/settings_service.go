package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
)

// SettingsService reads and updates the singleton pricing settings
type SettingsService struct {
	repo     pricing.SettingsRepository
	defaults pricing.Settings
}

// NewSettingsService creates a SettingsService. defaults are served until
// settings are saved for the first time.
func NewSettingsService(repo pricing.SettingsRepository, defaults pricing.Settings) *SettingsService {
	return &SettingsService{
		repo:     repo,
		defaults: defaults,
	}
}

// Current returns the stored settings, or the defaults when none are stored
func (s *SettingsService) Current(ctx context.Context) (pricing.Settings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return s.defaults, nil
		}
		return pricing.Settings{}, err
	}
	return *stored, nil
}

// EnsureDefaults stores the defaults if nothing is stored yet
func (s *SettingsService) EnsureDefaults(ctx context.Context) error {
	_, err := s.repo.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if err := s.defaults.Validate(); err != nil {
		return err
	}
	settings := s.defaults
	settings.UpdatedAt = time.Now()
	return s.repo.Save(ctx, &settings)
}

// Get returns the current settings
func (s *SettingsService) Get(ctx context.Context) (*SettingsResponse, error) {
	settings, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	resp := ToSettingsResponse(settings)
	return &resp, nil
}

// Update applies a partial update. Stored settings must have positive rates
// and non-negative percentages.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*SettingsResponse, error) {
	settings, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if req.ExchangeRatePrimary != nil {
		settings.ExchangeRatePrimary = *req.ExchangeRatePrimary
	}
	if req.ExchangeRateSecondary != nil {
		settings.ExchangeRateSecondary = *req.ExchangeRateSecondary
	}
	if req.DefaultMarginPercent != nil {
		settings.DefaultMarginPercent = *req.DefaultMarginPercent
	}
	if req.DefaultVatPercent != nil {
		settings.DefaultVatPercent = *req.DefaultVatPercent
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, &settings); err != nil {
		return nil, err
	}
	resp := ToSettingsResponse(settings)
	return &resp, nil
}

// Quote prices a cost with the current settings
func (s *SettingsService) Quote(ctx context.Context, req QuoteRequest) (*pricing.Breakdown, error) {
	settings, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	basis, err := pricing.ParseCostBasis(req.CostBasis)
	if err != nil {
		return nil, err
	}
	breakdown := pricing.Calculate(pricing.Input{
		Cost:                req.Cost,
		Freight:             req.Freight,
		CostBasis:           basis,
		CustomMarginPercent: req.CustomMarginPercent,
		CustomVatPercent:    req.CustomVatPercent,
	}, settings)
	return &breakdown, nil
}
