package models

import "time"

// ExecutionStatus is the lifecycle state of one workflow execution.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status is a final state.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// AgentResultStatus is the outcome of a single stage execution.
type AgentResultStatus string

const (
	AgentResultSuccess AgentResultStatus = "success"
	AgentResultFailed  AgentResultStatus = "failed"
	AgentResultSkipped AgentResultStatus = "skipped"
)

// WorkflowExecution is the persisted record of one pipeline run.
type WorkflowExecution struct {
	ID          string          `json:"id"`
	WorkflowID  string          `json:"workflow_id"`
	Status      ExecutionStatus `json:"status"`
	TriggeredBy string          `json:"triggered_by"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// AgentExecutionResult is the persisted outcome of one stage within an
// execution. OrderIndex preserves the declared stage order so history can be
// reconstructed even though parallel groups complete in undefined order.
type AgentExecutionResult struct {
	ID          string            `json:"id"`
	ExecutionID string            `json:"execution_id"`
	AgentID     string            `json:"agent_id"`
	Status      AgentResultStatus `json:"status"`
	OrderIndex  int               `json:"order_index"`
	InputData   map[string]any    `json:"input_data,omitempty"`
	OutputData  map[string]any    `json:"output_data,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	Metrics     map[string]any    `json:"metrics,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// ExecutionEvent is one persisted lifecycle transition.
type ExecutionEvent struct {
	ID          string         `json:"id"`
	ExecutionID string         `json:"execution_id"`
	EventType   string         `json:"event_type"`
	AgentID     string         `json:"agent_id,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// ExecutionOptions narrows an execution to a slice of the stage list.
type ExecutionOptions struct {
	StartFromAgent string `json:"start_from_agent,omitempty"`
	StopAtAgent    string `json:"stop_at_agent,omitempty"`
}
