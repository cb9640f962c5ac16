package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/retailcore/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements trade.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadInvoiceItems(db *gorm.DB) *gorm.DB {
	return db.Order("line ASC")
}

// FindByID finds an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Items", preloadInvoiceItems).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumberAndSupplier matches the number exactly and the supplier
// case-insensitively
func (r *GormInvoiceRepository) FindByNumberAndSupplier(ctx context.Context, number, supplier string) (*trade.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Items", preloadInvoiceItems).
		Where("number = ? AND supplier_key = ?", strings.TrimSpace(number), models.SupplierKey(supplier)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Invoice, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	query = paginate(query, filter, InvoiceSortFields, "date_issue")

	var rows []models.InvoiceModel
	if err := query.Preload("Items", preloadInvoiceItems).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toInvoices(rows), nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOverdue returns unpaid invoices whose due date is before now,
// oldest due date first
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, now time.Time) ([]trade.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Items", preloadInvoiceItems).
		Where("date_due IS NOT NULL AND date_due < ?", now).
		Where("status <> ?", finance.PaymentStatusPaid).
		Order("date_due ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toInvoices(rows), nil
}

// Save writes the invoice header and replaces its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *trade.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := model.Items
		model.Items = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", model.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// ExistsForSKU reports whether any invoice line carries the SKU
func (r *GormInvoiceRepository) ExistsForSKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceItemModel{}).
		Where("sku = ?", catalog.NormalizeSKU(sku)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Payables sums invoices that are not fully paid
func (r *GormInvoiceRepository) Payables(ctx context.Context) (trade.DebtSummary, error) {
	var rows []ledgerRow
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("total_usd, paid_amount_usd").
		Where("status <> ?", finance.PaymentStatusPaid).
		Scan(&rows).Error
	if err != nil {
		return trade.DebtSummary{}, err
	}
	return summarizeDebt(rows), nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(number) LIKE ? ESCAPE '\\' OR supplier_key LIKE ? ESCAPE '\\'", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case trade.InvoiceFilterSupplier:
			query = query.Where("supplier_key = ?", models.SupplierKey(fmt.Sprint(value)))
		case trade.InvoiceFilterStatus:
			query = query.Where("status = ?", fmt.Sprint(value))
		case trade.InvoiceFilterDueBefore:
			if t, ok := value.(time.Time); ok {
				query = query.Where("date_due IS NOT NULL AND date_due < ?", t)
			}
		}
	}
	return query
}

func toInvoices(rows []models.InvoiceModel) []trade.Invoice {
	invoices := make([]trade.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices
}

var _ trade.InvoiceRepository = (*GormInvoiceRepository)(nil)
