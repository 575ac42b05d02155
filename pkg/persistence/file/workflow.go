package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/persistence"
)

// WorkflowRepository stores each workflow as one JSON file under
// <root>/workflows.
type WorkflowRepository struct {
	root string
	mu   sync.RWMutex
}

func NewWorkflowRepository(root string) *WorkflowRepository {
	return &WorkflowRepository{root: root}
}

func (wr *WorkflowRepository) dir() string {
	return filepath.Join(wr.root, "workflows")
}

func (wr *WorkflowRepository) path(id string) string {
	return filepath.Join(wr.dir(), id+".json")
}

func (wr *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()

	root := os.DirFS(wr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, fileName := range jsonFiles {
		workflow, err := wr.read(fileName[:len(fileName)-5])
		if err != nil {
			return nil, err
		}

		if workflow.DeletedAt == nil {
			workflows = append(workflows, workflow)
		}
	}

	return workflows, nil
}

func (wr *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()

	return wr.read(id)
}

func (wr *WorkflowRepository) read(id string) (*models.Workflow, error) {
	payload, err := os.ReadFile(wr.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	workflow := &models.Workflow{}

	err = json.Unmarshal(payload, workflow)
	if err != nil {
		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return workflow, nil
}

func (wr *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	err := os.MkdirAll(wr.dir(), 0o755)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	payload, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	err = os.WriteFile(wr.path(workflow.ID), payload, 0o644)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) Delete(ctx context.Context, id string) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	err := os.Remove(wr.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
		}

		return persistence.NewWorkflowError("Delete", id, err)
	}

	return nil
}
