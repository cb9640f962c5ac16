package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/retailcore/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	saleSequenceName = "sale"
	saleNumberFormat = "S-%06d"
)

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func preloadSaleItems(db *gorm.DB) *gorm.DB {
	return db.Order("line ASC")
}

// FindByID finds a sale with its lines
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	err := r.db.WithContext(ctx).
		Preload("Items", preloadSaleItems).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds sales matching the filter, newest first by default
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Sale, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter)
	query = paginate(query, filter, SaleSortFields, "date")

	var rows []models.SaleModel
	err := query.
		Preload("Items", preloadSaleItems).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the sale header and replaces its lines
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	model := models.SaleModelFromDomain(sale)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := model.Items
		model.Items = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", model.ID).Delete(&models.SaleItemModel{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// NextNumber increments the sale counter and formats it
func (r *GormSaleRepository) NextNumber(ctx context.Context) (string, error) {
	var value int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq := models.SaleSequenceModel{Name: saleSequenceName}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.SaleSequenceModel{}).
			Where("name = ?", saleSequenceName).
			Update("value", gorm.Expr("value + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.SaleSequenceModel{}).
			Where("name = ?", saleSequenceName).
			Pluck("value", &value).Error
	})
	if err != nil {
		return "", fmt.Errorf("next sale number: %w", err)
	}
	return fmt.Sprintf(saleNumberFormat, value), nil
}

// ExistsForProduct reports whether any sale line references the product
func (r *GormSaleRepository) ExistsForProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SaleItemModel{}).
		Where("product_id = ?", productID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Receivables sums sales that are neither cancelled nor fully paid
func (r *GormSaleRepository) Receivables(ctx context.Context) (trade.DebtSummary, error) {
	var rows []ledgerRow
	err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Select("total_usd, paid_amount_usd").
		Where("status <> ?", trade.SaleStatusCancelled).
		Scan(&rows).Error
	if err != nil {
		return trade.DebtSummary{}, err
	}
	return summarizeDebt(rows), nil
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"LOWER(number) LIKE ? ESCAPE '\\' OR LOWER(client_id) LIKE ? ESCAPE '\\' OR LOWER(seller_name) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern,
		)
	}
	for key, value := range filter.Filters {
		switch key {
		case trade.SaleFilterStatus:
			query = query.Where("status = ?", fmt.Sprint(value))
		case trade.SaleFilterClientID:
			query = query.Where("client_id = ?", value)
		case trade.SaleFilterCreditOnly:
			if value == true {
				query = query.
					Where("status <> ?", trade.SaleStatusCancelled).
					Where("paid_amount_usd < total_usd - 0.01")
			}
		case trade.SaleFilterFrom:
			if t, ok := value.(time.Time); ok {
				query = query.Where("date >= ?", t)
			}
		case trade.SaleFilterTo:
			if t, ok := value.(time.Time); ok {
				query = query.Where("date < ?", t)
			}
		}
	}
	return query
}

// ledgerRow is the projection used for debt summaries
type ledgerRow struct {
	TotalUSD      decimal.Decimal
	PaidAmountUSD decimal.Decimal
}

// summarizeDebt keeps the rows still owing more than a cent
func summarizeDebt(rows []ledgerRow) trade.DebtSummary {
	summary := trade.DebtSummary{
		TotalUSD:       decimal.Zero,
		PaidUSD:        decimal.Zero,
		OutstandingUSD: decimal.Zero,
	}
	for _, row := range rows {
		remaining := row.TotalUSD.Sub(row.PaidAmountUSD)
		if remaining.LessThanOrEqual(valueobject.CentTolerance) {
			continue
		}
		summary.Count++
		summary.TotalUSD = summary.TotalUSD.Add(row.TotalUSD)
		summary.PaidUSD = summary.PaidUSD.Add(row.PaidAmountUSD)
		summary.OutstandingUSD = summary.OutstandingUSD.Add(remaining)
	}
	summary.TotalUSD = valueobject.Round2(summary.TotalUSD)
	summary.PaidUSD = valueobject.Round2(summary.PaidUSD)
	summary.OutstandingUSD = valueobject.Round2(summary.OutstandingUSD)
	return summary
}

var _ trade.SaleRepository = (*GormSaleRepository)(nil)
