package telemetry

import (
	"context"
	"fmt"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Attribute keys for business metrics
const (
	AttrPaymentMethod = "payment_method"
	AttrLedger        = "ledger"
	AttrCredit        = "credit"
)

// BusinessMetrics records retail counters: settled sales, payments and
// received invoices. Amounts are in USD.
type BusinessMetrics struct {
	salesSettled     metric.Int64Counter
	salesRevenue     metric.Float64Counter
	payments         metric.Int64Counter
	paymentAmount    metric.Float64Counter
	invoicesReceived metric.Int64Counter
	invoiceAmount    metric.Float64Counter
	logger           *zap.Logger
}

// NewBusinessMetrics creates the business instruments on meter.
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	bm := &BusinessMetrics{logger: logger}
	var err error

	if bm.salesSettled, err = meter.Int64Counter("retail.sales.settled",
		metric.WithDescription("Sales settled"), metric.WithUnit("{sale}")); err != nil {
		return nil, fmt.Errorf("sales counter: %w", err)
	}
	if bm.salesRevenue, err = meter.Float64Counter("retail.sales.revenue",
		metric.WithDescription("Settled sale totals"), metric.WithUnit("USD")); err != nil {
		return nil, fmt.Errorf("revenue counter: %w", err)
	}
	if bm.payments, err = meter.Int64Counter("retail.payments",
		metric.WithDescription("Payments recorded against sales and invoices"), metric.WithUnit("{payment}")); err != nil {
		return nil, fmt.Errorf("payments counter: %w", err)
	}
	if bm.paymentAmount, err = meter.Float64Counter("retail.payments.amount",
		metric.WithDescription("Payment amounts"), metric.WithUnit("USD")); err != nil {
		return nil, fmt.Errorf("payment amount counter: %w", err)
	}
	if bm.invoicesReceived, err = meter.Int64Counter("retail.invoices.received",
		metric.WithDescription("Supplier invoices received"), metric.WithUnit("{invoice}")); err != nil {
		return nil, fmt.Errorf("invoices counter: %w", err)
	}
	if bm.invoiceAmount, err = meter.Float64Counter("retail.invoices.amount",
		metric.WithDescription("Received invoice totals"), metric.WithUnit("USD")); err != nil {
		return nil, fmt.Errorf("invoice amount counter: %w", err)
	}
	return bm, nil
}

// RecordSaleSettled counts a settled sale and its total.
func (bm *BusinessMetrics) RecordSaleSettled(ctx context.Context, paymentMethod string, totalUSD decimal.Decimal, credit bool) {
	attrs := metric.WithAttributes(
		attribute.String(AttrPaymentMethod, paymentMethod),
		attribute.Bool(AttrCredit, credit),
	)
	bm.salesSettled.Add(ctx, 1, attrs)
	bm.salesRevenue.Add(ctx, totalUSD.InexactFloat64(), attrs)
}

// RecordPayment counts a payment on the "sale" or "invoice" ledger.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, ledger, paymentMethod string, amountUSD decimal.Decimal) {
	attrs := metric.WithAttributes(
		attribute.String(AttrLedger, ledger),
		attribute.String(AttrPaymentMethod, paymentMethod),
	)
	bm.payments.Add(ctx, 1, attrs)
	bm.paymentAmount.Add(ctx, amountUSD.InexactFloat64(), attrs)
}

// RecordInvoiceReceived counts a received supplier invoice.
func (bm *BusinessMetrics) RecordInvoiceReceived(ctx context.Context, totalUSD decimal.Decimal) {
	bm.invoicesReceived.Add(ctx, 1)
	bm.invoiceAmount.Add(ctx, totalUSD.InexactFloat64())
}

// SnapshotSources are queried on every collection cycle.
type SnapshotSources struct {
	Products catalog.ProductRepository
	Sales    trade.SaleRepository
	Invoices trade.InvoiceRepository
}

// RegisterSnapshotGauges exposes low stock and outstanding debt as
// observable gauges. Query failures are logged and the cycle is skipped.
func RegisterSnapshotGauges(meter metric.Meter, src SnapshotSources, logger *zap.Logger) (metric.Registration, error) {
	lowStock, err := meter.Int64ObservableGauge("retail.products.low_stock",
		metric.WithDescription("Products at or below their minimum stock"), metric.WithUnit("{product}"))
	if err != nil {
		return nil, err
	}
	receivable, err := meter.Float64ObservableGauge("retail.receivables.outstanding",
		metric.WithDescription("Outstanding balance on credit sales"), metric.WithUnit("USD"))
	if err != nil {
		return nil, err
	}
	payable, err := meter.Float64ObservableGauge("retail.payables.outstanding",
		metric.WithDescription("Outstanding balance on supplier invoices"), metric.WithUnit("USD"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		count, err := src.Products.Count(ctx, shared.Filter{
			Filters: map[string]any{catalog.FilterLowStock: true},
		})
		if err != nil {
			logger.Warn("Failed to collect low stock count", zap.Error(err))
		} else {
			o.ObserveInt64(lowStock, count)
		}

		if summary, err := src.Sales.Receivables(ctx); err != nil {
			logger.Warn("Failed to collect receivables", zap.Error(err))
		} else {
			o.ObserveFloat64(receivable, summary.OutstandingUSD.InexactFloat64())
		}

		if summary, err := src.Invoices.Payables(ctx); err != nil {
			logger.Warn("Failed to collect payables", zap.Error(err))
		} else {
			o.ObserveFloat64(payable, summary.OutstandingUSD.InexactFloat64())
		}
		return nil
	}, lowStock, receivable, payable)
}
