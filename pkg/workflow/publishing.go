package workflow

import (
	"context"
	"time"

	"github.com/tradewind-io/tradewind/pkg/eventbus"
	"github.com/tradewind-io/tradewind/pkg/events"
	"github.com/tradewind-io/tradewind/pkg/models"
)

// publishEvent emits a lifecycle event to the bus. Delivery is
// fire-and-forget: a slow or failing broker never blocks orchestration.
func (e *Executor) publishEvent(ctx context.Context, workflowID string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	detached := context.WithoutCancel(ctx)

	go func() {
		err := e.eventBus.Publish(detached, workflowID, event)
		if err != nil {
			e.logger.Warn("Failed to publish event",
				"event_type", event.GetType(),
				"workflow_id", workflowID,
				"error", err,
			)
		}
	}()
}

// persistEvent stores one lifecycle transition. Event history is telemetry,
// so write failures are logged and swallowed.
func (e *Executor) persistEvent(ctx context.Context, executionID string, eventType events.EventType, agentID string, data map[string]any) {
	err := e.persistence.ExecutionRepository().CreateEvent(ctx, &models.ExecutionEvent{
		ExecutionID: executionID,
		EventType:   string(eventType),
		AgentID:     agentID,
		Data:        data,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		e.logger.Warn("Failed to persist execution event",
			"execution_id", executionID,
			"event_type", eventType,
			"error", err,
		)
	}
}

// persistAgentResult stores one per-stage outcome, logging on failure.
func (e *Executor) persistAgentResult(ctx context.Context, result *models.AgentExecutionResult) {
	err := e.persistence.ExecutionRepository().CreateAgentResult(ctx, result)
	if err != nil {
		e.logger.Warn("Failed to persist agent result",
			"execution_id", result.ExecutionID,
			"agent_id", result.AgentID,
			"error", err,
		)
	}
}

func (e *Executor) baseEvent(eventType events.EventType, workflowID, executionID string) events.BaseEvent {
	return events.BaseEvent{
		ID:          e.newEventID(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  workflowID,
		ExecutionID: executionID,
	}
}

func (e *Executor) newEventID() string {
	if e.eventBus != nil {
		return e.eventBus.GenerateID()
	}

	return ""
}
