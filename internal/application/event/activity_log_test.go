package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type sampleEvent struct {
	shared.BaseDomainEvent
	Note string `json:"note"`
}

func newSampleEvent(note string) *sampleEvent {
	return &sampleEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SampleHappened", "Sample", uuid.New()),
		Note:            note,
	}
}

func TestActivityLog_Handle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := NewActivityLog(zap.New(core), 10)

	assert.Nil(t, log.EventTypes())

	ev := newSampleEvent("first")
	require.NoError(t, log.Handle(context.Background(), ev))

	recent := log.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, ev.EventID(), recent[0].EventID)
	assert.Equal(t, "SampleHappened", recent[0].EventType)
	assert.Contains(t, string(recent[0].Payload), `"note":"first"`)

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SampleHappened", entries[0].ContextMap()["event_type"])
}

func TestActivityLog_RecentWrapsAround(t *testing.T) {
	log := NewActivityLog(zap.NewNop(), 3)
	ctx := context.Background()

	notes := []string{"a", "b", "c", "d", "e"}
	events := make([]*sampleEvent, len(notes))
	for i, n := range notes {
		events[i] = newSampleEvent(n)
		require.NoError(t, log.Handle(ctx, events[i]))
	}

	recent := log.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, events[4].EventID(), recent[0].EventID)
	assert.Equal(t, events[3].EventID(), recent[1].EventID)
	assert.Equal(t, events[2].EventID(), recent[2].EventID)

	assert.Len(t, log.Recent(2), 2)
	assert.Len(t, log.Recent(50), 3)
}

func TestActivityLog_DefaultCapacity(t *testing.T) {
	log := NewActivityLog(zap.NewNop(), 0)
	assert.Empty(t, log.Recent(10))
	assert.Len(t, log.entries, DefaultActivityCapacity)
}
