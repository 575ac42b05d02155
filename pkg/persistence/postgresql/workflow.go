package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// GetAll returns all non-deleted workflows.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , stages
		  , settings
		  , decision_config
		  , variables
		  , owner
		  , created_at
		  , updated_at
		  , deleted_at
		FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func(ctx context.Context, r *WorkflowRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, rows.Err()
}

// GetByID returns a workflow by its id.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , stages
		  , settings
		  , decision_config
		  , variables
		  , owner
		  , created_at
		  , updated_at
		  , deleted_at
		FROM workflows
		WHERE id = $1 AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, id)

	workflow, err := scanWorkflow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewWorkflowError("GetByID", id, err)
	}

	return workflow, nil
}

// Save inserts or updates a workflow.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	stages, err := json.Marshal(workflow.Stages)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	settings, err := json.Marshal(workflow.Settings)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	var decisionConfig []byte

	if workflow.DecisionConfig != nil {
		decisionConfig, err = json.Marshal(workflow.DecisionConfig)
		if err != nil {
			return persistence.NewWorkflowError("Save", workflow.ID, err)
		}
	}

	variables, err := json.Marshal(workflow.Variables)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (id, name, description, stages, settings, decision_config, variables, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , description = EXCLUDED.description
		  , stages = EXCLUDED.stages
		  , settings = EXCLUDED.settings
		  , decision_config = EXCLUDED.decision_config
		  , variables = EXCLUDED.variables
		  , owner = EXCLUDED.owner
		  , updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		stages,
		settings,
		nullableBytes(decisionConfig),
		variables,
		workflow.Owner,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		return persistence.NewWorkflowError("Save", workflow.ID, err)
	}

	return nil
}

// Delete soft deletes a workflow by setting deleted_at.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE workflows SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewWorkflowError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow       models.Workflow
		stages         []byte
		settings       []byte
		decisionConfig sql.NullString
		variables      []byte
		deletedAt      sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&stages,
		&settings,
		&decisionConfig,
		&variables,
		&workflow.Owner,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(stages, &workflow.Stages)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stages: %w", err)
	}

	err = json.Unmarshal(settings, &workflow.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if decisionConfig.Valid {
		workflow.DecisionConfig = &models.DecisionConfig{}

		err = json.Unmarshal([]byte(decisionConfig.String), workflow.DecisionConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to decode decision config: %w", err)
		}
	}

	if len(variables) > 0 {
		err = json.Unmarshal(variables, &workflow.Variables)
		if err != nil {
			return nil, fmt.Errorf("failed to decode variables: %w", err)
		}
	}

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	return &workflow, nil
}

func nullableBytes(payload []byte) any {
	if len(payload) == 0 {
		return nil
	}

	return payload
}
