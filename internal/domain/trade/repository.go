package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Filter keys understood by SaleRepository.FindAll
const (
	SaleFilterStatus     = "status"
	SaleFilterClientID   = "client_id"
	SaleFilterCreditOnly = "credit_only"
	SaleFilterFrom       = "from"
	SaleFilterTo         = "to"
)

// Filter keys understood by InvoiceRepository.FindAll
const (
	InvoiceFilterSupplier  = "supplier"
	InvoiceFilterStatus    = "status"
	InvoiceFilterDueBefore = "due_before"
)

// DebtSummary aggregates open ledgers
type DebtSummary struct {
	Count          int64           `json:"count"`
	TotalUSD       decimal.Decimal `json:"total_usd"`
	PaidUSD        decimal.Decimal `json:"paid_usd"`
	OutstandingUSD decimal.Decimal `json:"outstanding_usd"`
}

// SaleRepository persists sales
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, sale *Sale) error
	// NextNumber reserves the next human readable sale number
	NextNumber(ctx context.Context) (string, error)
	ExistsForProduct(ctx context.Context, productID uuid.UUID) (bool, error)
	// Receivables sums sales that are neither cancelled nor fully paid
	Receivables(ctx context.Context) (DebtSummary, error)
}

// InvoiceRepository persists supplier invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByNumberAndSupplier matches number exactly and supplier case-insensitively
	FindByNumberAndSupplier(ctx context.Context, number, supplier string) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindOverdue(ctx context.Context, now time.Time) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	ExistsForSKU(ctx context.Context, sku string) (bool, error)
	// Payables sums invoices that are not fully paid
	Payables(ctx context.Context) (DebtSummary, error)
}
