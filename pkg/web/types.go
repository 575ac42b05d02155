// Package web provides HTTP request and response types for the pipeline API.
package web

import "github.com/tradewind-io/tradewind/pkg/models"

// CreateWorkflowRequest represents the request body for creating a workflow.
type CreateWorkflowRequest struct {
	Name           string                 `json:"name"        validate:"required,min=3"`
	Description    string                 `json:"description"`
	Stages         []*models.StageNode    `json:"stages"      validate:"required,min=1,dive"`
	Settings       models.Settings        `json:"settings"`
	DecisionConfig *models.DecisionConfig `json:"decision_config,omitempty"`
	Variables      map[string]any         `json:"variables,omitempty"`
	Owner          string                 `json:"owner"       validate:"required"`
}

// ExecuteWorkflowRequest represents the request body for starting an
// execution.
type ExecuteWorkflowRequest struct {
	UserID         string `json:"user_id"`
	StartFromAgent string `json:"start_from_agent,omitempty"`
	StopAtAgent    string `json:"stop_at_agent,omitempty"`
}

// CancelExecutionRequest carries the cancellation attribution.
type CancelExecutionRequest struct {
	CancelledBy string `json:"cancelled_by,omitempty"`
}

// RetryExecutionRequest represents the request body for retrying a failed
// execution.
type RetryExecutionRequest struct {
	FromAgent string `json:"from_agent,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// ExecutionResponse bundles an execution record with its per-stage results
// and lifecycle events.
type ExecutionResponse struct {
	Execution *models.WorkflowExecution      `json:"execution"`
	Results   []*models.AgentExecutionResult `json:"results,omitempty"`
	Events    []*models.ExecutionEvent       `json:"events,omitempty"`
}
