package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/persistence"
	"github.com/tradewind-io/tradewind/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Drop tables in reverse dependency order (children first, parents last)
	for _, table := range []string{"execution_events", "agent_execution_results", "workflow_executions", "workflows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("tradewind_test"),
			postgres.WithUsername("tradewind"),
			postgres.WithPassword("tradewind"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	persist, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = persist.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return persist, ctx, databaseURL
}

func sampleWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:        "BTC momentum",
		Description: "Collects candles, analyzes momentum and trades on signal",
		Stages: []*models.StageNode{
			{
				ID:        "collect_candles",
				AgentType: "http_collect",
				Category:  models.CategoryCollect,
				Name:      "Collect candles",
				Config:    map[string]any{"url": "https://api.example.com/candles"},
				Order:     0,
			},
			{
				ID:        "analyze_momentum",
				AgentType: "transform",
				Category:  models.CategoryAnalyze,
				Name:      "Analyze momentum",
				Config:    map[string]any{"mapping": map[string]any{"momentum": "candles"}},
				Order:     1,
			},
		},
		Settings: models.Settings{
			ExecutionTimeoutSeconds: 30,
			ErrorHandling:           models.ErrorHandling{Strategy: models.ErrorStrategyStop},
			RiskControls: &models.RiskControlConfig{
				MaxPositionSize: 5,
				MaxDailyLoss:    10,
			},
		},
		DecisionConfig: &models.DecisionConfig{
			Rules: []models.DecisionRule{
				{Field: "confidence", Operator: models.OperatorGTE, Value: 0.7},
			},
			Operator: models.CombineAnd,
		},
		Variables: map[string]any{"symbol": "BTC/USD"},
		Owner:     "test-user",
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'workflows')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "workflows table should exist")

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'workflow_executions')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "workflow_executions table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestWorkflowRepository_SaveAndRetrieve(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := sampleWorkflow()

	err := p.WorkflowRepository().Save(ctx, workflow)
	require.NoError(t, err)
	assert.NotEmpty(t, workflow.ID)
	assert.False(t, workflow.CreatedAt.IsZero())
	assert.False(t, workflow.UpdatedAt.IsZero())

	retrieved, err := p.WorkflowRepository().GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, workflow.Name, retrieved.Name)
	assert.Equal(t, workflow.Description, retrieved.Description)
	assert.Equal(t, workflow.Owner, retrieved.Owner)
	assert.Len(t, retrieved.Stages, 2)
	assert.Equal(t, models.CategoryAnalyze, retrieved.Stages[1].Category)
	assert.Equal(t, "BTC/USD", retrieved.Variables["symbol"])

	require.NotNil(t, retrieved.DecisionConfig)
	require.Len(t, retrieved.DecisionConfig.Rules, 1)
	assert.Equal(t, models.OperatorGTE, retrieved.DecisionConfig.Rules[0].Operator)

	require.NotNil(t, retrieved.Settings.RiskControls)
	assert.InDelta(t, 5.0, retrieved.Settings.RiskControls.MaxPositionSize, 1e-9)

	_, err = p.WorkflowRepository().GetByID(ctx, uuid.NewString())
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_Update(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := sampleWorkflow()

	err := p.WorkflowRepository().Save(ctx, workflow)
	require.NoError(t, err)

	initialUpdatedAt := workflow.UpdatedAt

	// Wait a moment to ensure different timestamp
	time.Sleep(10 * time.Millisecond)

	workflow.Name = "ETH momentum"
	workflow.Description = "Updated"

	err = p.WorkflowRepository().Save(ctx, workflow)
	require.NoError(t, err)

	retrieved, err := p.WorkflowRepository().GetByID(ctx, workflow.ID)
	require.NoError(t, err)

	assert.Equal(t, "ETH momentum", retrieved.Name)
	assert.Equal(t, "Updated", retrieved.Description)
	assert.True(t, retrieved.UpdatedAt.After(initialUpdatedAt))
}

func TestWorkflowRepository_GetAll(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	first := sampleWorkflow()
	second := sampleWorkflow()
	second.Name = "ETH momentum"

	require.NoError(t, p.WorkflowRepository().Save(ctx, first))
	require.NoError(t, p.WorkflowRepository().Save(ctx, second))

	retrieved, err := p.WorkflowRepository().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, retrieved, 2)
}

func TestWorkflowRepository_SoftDelete(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := sampleWorkflow()

	err := p.WorkflowRepository().Save(ctx, workflow)
	require.NoError(t, err)

	err = p.WorkflowRepository().Delete(ctx, workflow.ID)
	require.NoError(t, err)

	_, err = p.WorkflowRepository().GetByID(ctx, workflow.ID)
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))

	all, err := p.WorkflowRepository().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	err = p.WorkflowRepository().Delete(ctx, uuid.NewString())
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestExecutionRepository_Lifecycle(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := sampleWorkflow()
	require.NoError(t, p.WorkflowRepository().Save(ctx, workflow))

	execution := &models.WorkflowExecution{
		ID:          "exec-" + uuid.NewString()[:8],
		WorkflowID:  workflow.ID,
		Status:      models.ExecutionStatusRunning,
		TriggeredBy: "test-user",
		StartTime:   time.Now().UTC(),
	}

	err := p.ExecutionRepository().CreateExecution(ctx, execution)
	require.NoError(t, err)

	retrieved, err := p.ExecutionRepository().FindByID(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, retrieved.Status)
	assert.Nil(t, retrieved.EndTime)

	err = p.ExecutionRepository().UpdateStatus(ctx, execution.ID, models.ExecutionStatusFailed, "stage collect_candles failed")
	require.NoError(t, err)

	retrieved, err = p.ExecutionRepository().FindByID(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, retrieved.Status)
	assert.Equal(t, "stage collect_candles failed", retrieved.Error)

	// Terminal statuses stamp the end time.
	require.NotNil(t, retrieved.EndTime)

	err = p.ExecutionRepository().UpdateStatus(ctx, "exec-missing", models.ExecutionStatusFailed, "")
	require.Error(t, err)
	assert.True(t, persistence.IsExecutionNotFound(err))

	_, err = p.ExecutionRepository().FindByID(ctx, "exec-missing")
	require.Error(t, err)
	assert.True(t, persistence.IsExecutionNotFound(err))
}

func TestExecutionRepository_AgentResultsOrdering(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := sampleWorkflow()
	require.NoError(t, p.WorkflowRepository().Save(ctx, workflow))

	execution := &models.WorkflowExecution{
		ID:         "exec-" + uuid.NewString()[:8],
		WorkflowID: workflow.ID,
		Status:     models.ExecutionStatusRunning,
		StartTime:  time.Now().UTC(),
	}
	require.NoError(t, p.ExecutionRepository().CreateExecution(ctx, execution))

	now := time.Now().UTC()

	// Insert out of declared order; retrieval sorts by order index.
	results := []*models.AgentExecutionResult{
		{
			ExecutionID: execution.ID,
			AgentID:     "analyze_momentum",
			Status:      models.AgentResultSuccess,
			OrderIndex:  1,
			InputData:   map[string]any{"candles": []any{1.0, 2.0}},
			OutputData:  map[string]any{"confidence": 0.8},
			StartTime:   now.Add(time.Second),
			EndTime:     now.Add(2 * time.Second),
			Metrics:     map[string]any{"duration_ms": 1000.0},
		},
		{
			ExecutionID: execution.ID,
			AgentID:     "collect_candles",
			Status:      models.AgentResultSuccess,
			OrderIndex:  0,
			OutputData:  map[string]any{"candles": []any{1.0, 2.0}},
			StartTime:   now,
			EndTime:     now.Add(time.Second),
		},
	}

	for _, result := range results {
		require.NoError(t, p.ExecutionRepository().CreateAgentResult(ctx, result))
		assert.NotEmpty(t, result.ID)
	}

	retrieved, err := p.ExecutionRepository().AgentResults(ctx, execution.ID)
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	assert.Equal(t, "collect_candles", retrieved[0].AgentID)
	assert.Equal(t, "analyze_momentum", retrieved[1].AgentID)
	assert.Equal(t, 0.8, retrieved[1].OutputData["confidence"])
	assert.Equal(t, 1000.0, retrieved[1].Metrics["duration_ms"])
	assert.Nil(t, retrieved[0].InputData)
}

func TestExecutionRepository_Events(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	workflow := sampleWorkflow()
	require.NoError(t, p.WorkflowRepository().Save(ctx, workflow))

	execution := &models.WorkflowExecution{
		ID:         "exec-" + uuid.NewString()[:8],
		WorkflowID: workflow.ID,
		Status:     models.ExecutionStatusRunning,
		StartTime:  time.Now().UTC(),
	}
	require.NoError(t, p.ExecutionRepository().CreateExecution(ctx, execution))

	now := time.Now().UTC()

	events := []*models.ExecutionEvent{
		{
			ExecutionID: execution.ID,
			EventType:   "execution.started",
			Timestamp:   now,
		},
		{
			ExecutionID: execution.ID,
			EventType:   "agent.completed",
			AgentID:     "collect_candles",
			Data:        map[string]any{"duration_ms": 120.0},
			Timestamp:   now.Add(time.Second),
		},
	}

	for _, event := range events {
		require.NoError(t, p.ExecutionRepository().CreateEvent(ctx, event))
	}

	retrieved, err := p.ExecutionRepository().Events(ctx, execution.ID)
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	assert.Equal(t, "execution.started", retrieved[0].EventType)
	assert.Equal(t, "agent.completed", retrieved[1].EventType)
	assert.Equal(t, "collect_candles", retrieved[1].AgentID)
	assert.Equal(t, 120.0, retrieved[1].Data["duration_ms"])
}
