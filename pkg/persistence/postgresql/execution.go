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

// ExecutionRepository handles execution-related database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(db *sql.DB, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// CreateExecution stores a new workflow execution record.
func (r *ExecutionRepository) CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	query := `
		INSERT INTO workflow_executions (id, workflow_id, status, triggered_by, start_time, end_time, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.Status,
		execution.TriggeredBy,
		execution.StartTime,
		execution.EndTime,
		execution.Error,
	)
	if err != nil {
		return persistence.NewExecutionError("CreateExecution", execution.ID, err)
	}

	return nil
}

// UpdateStatus transitions an execution to a new status. Terminal statuses
// stamp end_time.
func (r *ExecutionRepository) UpdateStatus(ctx context.Context, id string, status models.ExecutionStatus, errorMessage string) error {
	var endTime any
	if status.Terminal() {
		endTime = time.Now().UTC()
	}

	query := `
		UPDATE workflow_executions
		SET status = $2, error = $3, end_time = COALESCE($4, end_time)
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status, errorMessage, endTime)
	if err != nil {
		return persistence.NewExecutionError("UpdateStatus", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewExecutionError("UpdateStatus", id, err)
	}

	if affected == 0 {
		return persistence.NewExecutionError("UpdateStatus", id, persistence.ErrExecutionNotFound)
	}

	return nil
}

// FindByID returns a single execution.
func (r *ExecutionRepository) FindByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `
		SELECT id, workflow_id, status, triggered_by, start_time, end_time, error
		FROM workflow_executions
		WHERE id = $1
	`

	var (
		execution models.WorkflowExecution
		endTime   sql.NullTime
		errText   sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.Status,
		&execution.TriggeredBy,
		&execution.StartTime,
		&endTime,
		&errText,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewExecutionError("FindByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("FindByID", id, err)
	}

	if endTime.Valid {
		execution.EndTime = &endTime.Time
	}

	execution.Error = errText.String

	return &execution, nil
}

// CreateAgentResult stores the outcome of one stage.
func (r *ExecutionRepository) CreateAgentResult(ctx context.Context, result *models.AgentExecutionResult) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}

	inputData, err := marshalJSONB(result.InputData)
	if err != nil {
		return persistence.NewExecutionError("CreateAgentResult", result.ExecutionID, err)
	}

	outputData, err := marshalJSONB(result.OutputData)
	if err != nil {
		return persistence.NewExecutionError("CreateAgentResult", result.ExecutionID, err)
	}

	metrics, err := marshalJSONB(result.Metrics)
	if err != nil {
		return persistence.NewExecutionError("CreateAgentResult", result.ExecutionID, err)
	}

	query := `
		INSERT INTO agent_execution_results
			(id, execution_id, agent_id, status, order_index, input_data, output_data, metrics, error, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		result.ID,
		result.ExecutionID,
		result.AgentID,
		result.Status,
		result.OrderIndex,
		inputData,
		outputData,
		metrics,
		result.Error,
		result.StartTime,
		result.EndTime,
	)
	if err != nil {
		return persistence.NewExecutionError("CreateAgentResult", result.ExecutionID, err)
	}

	return nil
}

// AgentResults returns all stage outcomes for an execution in declared order.
func (r *ExecutionRepository) AgentResults(ctx context.Context, executionID string) ([]*models.AgentExecutionResult, error) {
	query := `
		SELECT id, execution_id, agent_id, status, order_index, input_data, output_data, metrics, error, start_time, end_time
		FROM agent_execution_results
		WHERE execution_id = $1
		ORDER BY order_index ASC, start_time ASC
	`

	rows, err := r.db.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, persistence.NewExecutionError("AgentResults", executionID, err)
	}

	defer func(ctx context.Context, r *ExecutionRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	results := make([]*models.AgentExecutionResult, 0)

	for rows.Next() {
		var (
			result     models.AgentExecutionResult
			inputData  []byte
			outputData []byte
			metrics    []byte
			errText    sql.NullString
		)

		err := rows.Scan(
			&result.ID,
			&result.ExecutionID,
			&result.AgentID,
			&result.Status,
			&result.OrderIndex,
			&inputData,
			&outputData,
			&metrics,
			&errText,
			&result.StartTime,
			&result.EndTime,
		)
		if err != nil {
			return nil, persistence.NewExecutionError("AgentResults", executionID, err)
		}

		err = unmarshalJSONB(inputData, &result.InputData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode input data: %w", err)
		}

		err = unmarshalJSONB(outputData, &result.OutputData)
		if err != nil {
			return nil, fmt.Errorf("failed to decode output data: %w", err)
		}

		err = unmarshalJSONB(metrics, &result.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to decode metrics: %w", err)
		}

		result.Error = errText.String

		results = append(results, &result)
	}

	return results, rows.Err()
}

// CreateEvent stores one execution lifecycle event.
func (r *ExecutionRepository) CreateEvent(ctx context.Context, event *models.ExecutionEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := marshalJSONB(event.Data)
	if err != nil {
		return persistence.NewExecutionError("CreateEvent", event.ExecutionID, err)
	}

	query := `
		INSERT INTO execution_events (id, execution_id, event_type, agent_id, data, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		event.ID,
		event.ExecutionID,
		event.EventType,
		event.AgentID,
		data,
		event.Timestamp,
	)
	if err != nil {
		return persistence.NewExecutionError("CreateEvent", event.ExecutionID, err)
	}

	return nil
}

// Events returns all lifecycle events for an execution in publish order.
func (r *ExecutionRepository) Events(ctx context.Context, executionID string) ([]*models.ExecutionEvent, error) {
	query := `
		SELECT id, execution_id, event_type, agent_id, data, timestamp
		FROM execution_events
		WHERE execution_id = $1
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, executionID)
	if err != nil {
		return nil, persistence.NewExecutionError("Events", executionID, err)
	}

	defer func(ctx context.Context, r *ExecutionRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	events := make([]*models.ExecutionEvent, 0)

	for rows.Next() {
		var (
			event   models.ExecutionEvent
			agentID sql.NullString
			data    []byte
		)

		err := rows.Scan(&event.ID, &event.ExecutionID, &event.EventType, &agentID, &data, &event.Timestamp)
		if err != nil {
			return nil, persistence.NewExecutionError("Events", executionID, err)
		}

		event.AgentID = agentID.String

		err = unmarshalJSONB(data, &event.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode event data: %w", err)
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}

func marshalJSONB(payload map[string]any) (any, error) {
	if payload == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return encoded, nil
}

func unmarshalJSONB(payload []byte, target *map[string]any) error {
	if len(payload) == 0 {
		return nil
	}

	return json.Unmarshal(payload, target)
}
