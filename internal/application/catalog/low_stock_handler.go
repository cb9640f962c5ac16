package catalog

import (
	"context"
	"fmt"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlertNotifier sends a stock alert through some channel
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
	AlertType    string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// LowStockAlertHandler turns StockBelowMinimum events into alerts
type LowStockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewLowStockAlertHandler creates a new handler for stock below minimum events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{catalog.EventTypeStockBelowMinimum}
}

// Handle processes a StockBelowMinimumEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*catalog.StockBelowMinimumEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", catalog.EventTypeStockBelowMinimum),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeStockBelowMinimum, event.EventType())
	}

	alertType := "low_stock"
	if lowStock.CurrentStock == 0 {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		ProductID:    lowStock.ProductID.String(),
		SKU:          lowStock.SKU,
		Name:         lowStock.Name,
		CurrentStock: lowStock.CurrentStock,
		MinStock:     lowStock.MinStock,
		AlertType:    alertType,
	}

	h.logger.Warn("stock below minimum detected",
		zap.String("product_id", alert.ProductID),
		zap.String("sku", alert.SKU),
		zap.Int("current_stock", alert.CurrentStock),
		zap.Int("min_stock", alert.MinStock),
	)

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// A failed notification must not fail the sale that triggered it
			h.logger.Error("failed to send stock alert notification",
				zap.String("product_id", alert.ProductID),
				zap.Error(err),
			)
		}
	}
	return nil
}

var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the log
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("sku", alert.SKU),
		zap.String("name", alert.Name),
		zap.Int("current_stock", alert.CurrentStock),
		zap.Int("min_stock", alert.MinStock),
	)
	return nil
}
