package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradewind-io/tradewind/pkg/channels/gochannel"
	"github.com/tradewind-io/tradewind/pkg/eventbus"
	"github.com/tradewind-io/tradewind/pkg/events"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func baseEvent(bus eventbus.EventBus, eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:          bus.GenerateID(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  "wf-1",
		ExecutionID: "exec-12345678",
	}
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.AgentCompleted, 1)

	err := bus.Handle(events.AgentCompletedEvent, func(ctx context.Context, event any) error {
		completed, ok := event.(*events.AgentCompleted)
		if ok {
			received <- completed
		}

		return nil
	})
	require.NoError(t, err)

	err = bus.Subscribe(ctx)
	require.NoError(t, err)

	err = bus.Publish(ctx, "wf-1", events.AgentCompleted{
		BaseEvent:  baseEvent(bus, events.AgentCompletedEvent),
		AgentID:    "analyze_momentum",
		OutputData: map[string]any{"confidence": 0.8},
		DurationMs: 42,
	})
	require.NoError(t, err)

	select {
	case completed := <-received:
		assert.Equal(t, "analyze_momentum", completed.AgentID)
		assert.Equal(t, "wf-1", completed.WorkflowID)
		assert.Equal(t, 0.8, completed.OutputData["confidence"])
		assert.Equal(t, int64(42), completed.DurationMs)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestWatermillEventBus_UnhandledTypesAreDropped(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.GateBlocked, 1)

	err := bus.Handle(events.GateBlockedEvent, func(ctx context.Context, event any) error {
		blocked, ok := event.(*events.GateBlocked)
		if ok {
			received <- blocked
		}

		return nil
	})
	require.NoError(t, err)

	err = bus.Subscribe(ctx)
	require.NoError(t, err)

	// No handler registered for execution.started; it must not reach the
	// gate handler.
	err = bus.Publish(ctx, "wf-1", events.ExecutionStarted{
		BaseEvent: baseEvent(bus, events.ExecutionStartedEvent),
	})
	require.NoError(t, err)

	err = bus.Publish(ctx, "wf-1", events.GateBlocked{
		BaseEvent: baseEvent(bus, events.GateBlockedEvent),
		Source:    "risk",
	})
	require.NoError(t, err)

	select {
	case blocked := <-received:
		assert.Equal(t, "risk", blocked.Source)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
