// Package persistence provides data storage abstraction for workflows and executions.
package persistence

import (
	"context"

	"github.com/tradewind-io/tradewind/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores pipeline definitions.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores execution records, per-stage results and
// lifecycle events. Event and result writes are telemetry: the orchestrator
// logs their failures but never aborts a run on them.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error
	UpdateStatus(ctx context.Context, executionID string, status models.ExecutionStatus, errorMessage string) error
	FindByID(ctx context.Context, executionID string) (*models.WorkflowExecution, error)

	CreateAgentResult(ctx context.Context, result *models.AgentExecutionResult) error
	AgentResults(ctx context.Context, executionID string) ([]*models.AgentExecutionResult, error)

	CreateEvent(ctx context.Context, event *models.ExecutionEvent) error
	Events(ctx context.Context, executionID string) ([]*models.ExecutionEvent, error)
}
