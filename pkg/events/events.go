// Package events defines event types and structures for execution lifecycle notifications.
package events

import (
	"time"

	"github.com/tradewind-io/tradewind/pkg/models"
)

type EventType string

// Kafka topic carrying execution lifecycle events.
const Topic = "tradewind.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionCancelledEvent EventType = "execution.cancelled"

	AgentStartedEvent   EventType = "agent.started"
	AgentCompletedEvent EventType = "agent.completed"
	AgentFailedEvent    EventType = "agent.failed"
	AgentSkippedEvent   EventType = "agent.skipped"

	GateBlockedEvent EventType = "gate.blocked"
)

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	WorkflowID  string         `json:"workflow_id"`
	ExecutionID string         `json:"execution_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type ExecutionStarted struct {
	BaseEvent

	TriggeredBy string `json:"triggered_by"`
	StageCount  int    `json:"stage_count"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	Duration   time.Duration `json:"duration"`
	StageCount int           `json:"stage_count"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	Error    string        `json:"error"`
	Duration time.Duration `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

type ExecutionCancelled struct {
	BaseEvent

	CancelledBy string `json:"cancelled_by,omitempty"`
}

func (e ExecutionCancelled) GetType() EventType {
	return ExecutionCancelledEvent
}

type AgentStarted struct {
	BaseEvent

	AgentID   string         `json:"agent_id"`
	AgentType string         `json:"agent_type"`
	Category  models.Category `json:"category"`
	InputData map[string]any `json:"input_data,omitempty"`
}

func (e AgentStarted) GetType() EventType {
	return AgentStartedEvent
}

type AgentCompleted struct {
	BaseEvent

	AgentID    string         `json:"agent_id"`
	OutputData map[string]any `json:"output_data,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

func (e AgentCompleted) GetType() EventType {
	return AgentCompletedEvent
}

type AgentFailed struct {
	BaseEvent

	AgentID    string `json:"agent_id"`
	Error      string `json:"error"`
	DurationMs int64  `json:"duration_ms"`
}

func (e AgentFailed) GetType() EventType {
	return AgentFailedEvent
}

type AgentSkipped struct {
	BaseEvent

	AgentID string `json:"agent_id"`
	Reason  string `json:"reason"`
}

func (e AgentSkipped) GetType() EventType {
	return AgentSkippedEvent
}

// GateBlocked is emitted when the decision engine or risk gate blocks the
// downstream execute stages.
type GateBlocked struct {
	BaseEvent

	Source string         `json:"source"` // "decision" or "risk"
	Detail map[string]any `json:"detail,omitempty"`
}

func (e GateBlocked) GetType() EventType {
	return GateBlockedEvent
}
