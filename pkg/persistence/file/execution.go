package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/persistence"
)

// executionDocument bundles an execution with its results and events into
// one JSON file, rewritten on every mutation. History volumes stay small in
// the file persistence use cases (tests, one-shot runs).
type executionDocument struct {
	Execution *models.WorkflowExecution      `json:"execution"`
	Results   []*models.AgentExecutionResult `json:"results"`
	Events    []*models.ExecutionEvent       `json:"events"`
}

// ExecutionRepository stores each execution as one JSON document under
// <root>/executions.
type ExecutionRepository struct {
	root string
	mu   sync.Mutex
}

func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (er *ExecutionRepository) path(executionID string) string {
	return filepath.Join(er.root, "executions", executionID+".json")
}

func (er *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	doc := &executionDocument{
		Execution: execution,
		Results:   []*models.AgentExecutionResult{},
		Events:    []*models.ExecutionEvent{},
	}

	return er.write(execution.ID, doc)
}

func (er *ExecutionRepository) UpdateStatus(ctx context.Context, executionID string, status models.ExecutionStatus, errorMessage string) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	doc, err := er.read(executionID)
	if err != nil {
		return err
	}

	doc.Execution.Status = status
	doc.Execution.Error = errorMessage

	if status.Terminal() {
		now := time.Now().UTC()
		doc.Execution.EndTime = &now
	}

	return er.write(executionID, doc)
}

func (er *ExecutionRepository) FindByID(ctx context.Context, executionID string) (*models.WorkflowExecution, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	doc, err := er.read(executionID)
	if err != nil {
		return nil, err
	}

	return doc.Execution, nil
}

func (er *ExecutionRepository) CreateAgentResult(ctx context.Context, result *models.AgentExecutionResult) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	doc, err := er.read(result.ExecutionID)
	if err != nil {
		return err
	}

	doc.Results = append(doc.Results, result)

	return er.write(result.ExecutionID, doc)
}

func (er *ExecutionRepository) AgentResults(ctx context.Context, executionID string) ([]*models.AgentExecutionResult, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	doc, err := er.read(executionID)
	if err != nil {
		return nil, err
	}

	return doc.Results, nil
}

func (er *ExecutionRepository) CreateEvent(ctx context.Context, event *models.ExecutionEvent) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	doc, err := er.read(event.ExecutionID)
	if err != nil {
		return err
	}

	doc.Events = append(doc.Events, event)

	return er.write(event.ExecutionID, doc)
}

func (er *ExecutionRepository) Events(ctx context.Context, executionID string) ([]*models.ExecutionEvent, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	doc, err := er.read(executionID)
	if err != nil {
		return nil, err
	}

	return doc.Events, nil
}

func (er *ExecutionRepository) read(executionID string) (*executionDocument, error) {
	payload, err := os.ReadFile(er.path(executionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewExecutionError("FindByID", executionID, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("FindByID", executionID, err)
	}

	doc := &executionDocument{}

	err = json.Unmarshal(payload, doc)
	if err != nil {
		return nil, persistence.NewExecutionError("FindByID", executionID, err)
	}

	return doc, nil
}

func (er *ExecutionRepository) write(executionID string, doc *executionDocument) error {
	err := os.MkdirAll(filepath.Join(er.root, "executions"), 0o755)
	if err != nil {
		return persistence.NewExecutionError("Save", executionID, err)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return persistence.NewExecutionError("Save", executionID, err)
	}

	err = os.WriteFile(er.path(executionID), payload, 0o644)
	if err != nil {
		return persistence.NewExecutionError("Save", executionID, err)
	}

	return nil
}
