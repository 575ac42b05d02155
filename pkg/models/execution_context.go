package models

import "time"

// ExecutionContext is the in-memory state of one active execution, removed
// from the active registry when the run terminates. CurrentIndex is the
// position of the stage the run is at in the workflow's sorted stage list.
type ExecutionContext struct {
	ExecutionID  string         `json:"execution_id"`
	WorkflowID   string         `json:"workflow_id"`
	UserID       string         `json:"user_id,omitempty"`
	StartTime    time.Time      `json:"start_time"`
	AgentResults map[string]any `json:"agent_results,omitempty"`
	CurrentIndex int            `json:"current_index"`
}
