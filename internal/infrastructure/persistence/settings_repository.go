package persistence

import (
	"context"
	"errors"

	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository stores the pricing settings as a single row
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Get returns the stored settings or shared.ErrNotFound
func (r *GormSettingsRepository) Get(ctx context.Context) (*pricing.Settings, error) {
	var model models.PricingSettingsModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", models.SettingsRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the settings row
func (r *GormSettingsRepository) Save(ctx context.Context, settings *pricing.Settings) error {
	model := models.PricingSettingsModelFromDomain(settings)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

var _ pricing.SettingsRepository = (*GormSettingsRepository)(nil)
