package trade

import (
	"context"

	"github.com/retailcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// publishEvents hands the pending events of committed aggregates to the
// publisher and clears them. Delivery failures are logged, never returned:
// the write they describe has already been committed.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		if publisher != nil {
			if err := publisher.Publish(ctx, events...); err != nil {
				logger.Warn("failed to publish domain events",
					zap.String("aggregate_id", agg.GetID().String()),
					zap.Int("count", len(events)),
					zap.Error(err),
				)
			}
		}
		agg.ClearDomainEvents()
	}
}
