package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultActivityCapacity is the number of entries kept when none is given
const DefaultActivityCapacity = 200

// ActivityEntry is one recorded domain event
type ActivityEntry struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// ActivityLog subscribes to every event, logs it and keeps the most recent
// entries in a fixed-size ring for the activity endpoint.
type ActivityLog struct {
	logger *zap.Logger

	mu      sync.RWMutex
	entries []ActivityEntry
	next    int
	full    bool
}

// NewActivityLog creates an activity log holding up to capacity entries
func NewActivityLog(logger *zap.Logger, capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivityLog{
		logger:  logger,
		entries: make([]ActivityEntry, capacity),
	}
}

// EventTypes returns nil so the bus delivers every event
func (a *ActivityLog) EventTypes() []string {
	return nil
}

// Handle records the event
func (a *ActivityLog) Handle(ctx context.Context, event shared.DomainEvent) error {
	entry := ActivityEntry{
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		OccurredAt:    event.OccurredAt(),
	}
	if payload, err := json.Marshal(event); err == nil {
		entry.Payload = payload
	} else {
		a.logger.Debug("event payload not serializable",
			zap.String("event_type", entry.EventType),
			zap.Error(err),
		)
	}

	a.logger.Info("domain event",
		zap.String("event_type", entry.EventType),
		zap.String("aggregate_type", entry.AggregateType),
		zap.String("aggregate_id", entry.AggregateID.String()),
		zap.String("event_id", entry.EventID.String()),
	)

	a.mu.Lock()
	a.entries[a.next] = entry
	a.next = (a.next + 1) % len(a.entries)
	if a.next == 0 {
		a.full = true
	}
	a.mu.Unlock()
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything retained.
func (a *ActivityLog) Recent(limit int) []ActivityEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	size := a.next
	if a.full {
		size = len(a.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	result := make([]ActivityEntry, 0, limit)
	idx := a.next
	for i := 0; i < limit; i++ {
		idx = (idx - 1 + len(a.entries)) % len(a.entries)
		result = append(result, a.entries[idx])
	}
	return result
}

var _ shared.EventHandler = (*ActivityLog)(nil)
