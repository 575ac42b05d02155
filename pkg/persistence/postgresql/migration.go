package postgresql

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/tradewind-io/tradewind/pkg/persistence/sqlbase"
)

func runMigrations(ctx context.Context, logger *slog.Logger, db *sql.DB) error {
	return sqlbase.NewMigrationManager(logger, db, migrations()).RunMigrations(ctx)
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Workflow definitions. Stages, settings and the decision gate
			-- config are stored as JSONB documents.
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				stages JSONB NOT NULL DEFAULT '[]',
				settings JSONB NOT NULL DEFAULT '{}',
				decision_config JSONB,
				variables JSONB,
				owner VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_owner ON workflows(owner);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);
		`,
		2: `
			-- Execution history.
			CREATE TABLE workflow_executions (
				id VARCHAR(255) PRIMARY KEY,
				workflow_id UUID NOT NULL,
				status VARCHAR(50) NOT NULL,
				triggered_by VARCHAR(255),
				start_time TIMESTAMP WITH TIME ZONE NOT NULL,
				end_time TIMESTAMP WITH TIME ZONE,
				error TEXT
			);

			CREATE INDEX idx_executions_workflow_id ON workflow_executions(workflow_id);
			CREATE INDEX idx_executions_status ON workflow_executions(status);
			CREATE INDEX idx_executions_start_time ON workflow_executions(start_time);

			CREATE TABLE agent_execution_results (
				id UUID PRIMARY KEY,
				execution_id VARCHAR(255) NOT NULL REFERENCES workflow_executions(id) ON DELETE CASCADE,
				agent_id VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				order_index INT NOT NULL,
				input_data JSONB,
				output_data JSONB,
				metrics JSONB,
				error TEXT,
				start_time TIMESTAMP WITH TIME ZONE NOT NULL,
				end_time TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_agent_results_execution_id ON agent_execution_results(execution_id);
			CREATE INDEX idx_agent_results_order ON agent_execution_results(execution_id, order_index);

			CREATE TABLE execution_events (
				id UUID PRIMARY KEY,
				execution_id VARCHAR(255) NOT NULL REFERENCES workflow_executions(id) ON DELETE CASCADE,
				event_type VARCHAR(100) NOT NULL,
				agent_id VARCHAR(255),
				data JSONB,
				timestamp TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_execution_events_execution_id ON execution_events(execution_id);
			CREATE INDEX idx_execution_events_timestamp ON execution_events(timestamp);
		`,
	}
}
