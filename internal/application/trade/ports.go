package trade

import (
	"context"

	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CartStore keeps one cart per session
type CartStore interface {
	// Get returns the session's cart, or a new empty one
	Get(ctx context.Context, sessionID string) (*trade.Cart, error)
	Save(ctx context.Context, cart *trade.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// SettingsProvider returns the pricing settings in force
type SettingsProvider interface {
	Current(ctx context.Context) (pricing.Settings, error)
}

// MetricsRecorder receives business counters. All methods must be safe to
// call concurrently.
type MetricsRecorder interface {
	RecordSaleSettled(ctx context.Context, paymentMethod string, totalUSD decimal.Decimal, credit bool)
	RecordPayment(ctx context.Context, ledger, paymentMethod string, amountUSD decimal.Decimal)
	RecordInvoiceReceived(ctx context.Context, totalUSD decimal.Decimal)
}

type noopMetrics struct{}

func (noopMetrics) RecordSaleSettled(context.Context, string, decimal.Decimal, bool) {}
func (noopMetrics) RecordPayment(context.Context, string, string, decimal.Decimal)   {}
func (noopMetrics) RecordInvoiceReceived(context.Context, decimal.Decimal)           {}
