// Package protocol defines the interfaces and contracts for pluggable agents.
package protocol

import (
	"context"
	"log/slog"
)

// Agent is one stage implementation. The orchestrator never inspects agent
// internals; it only drives this three-method contract.
type Agent interface {
	// Execute runs the agent against the upstream stage's output data.
	Execute(ctx context.Context, input map[string]any, logger *slog.Logger) (map[string]any, error)

	// Cleanup releases resources held by the agent. Called exactly once
	// after Execute returns, regardless of outcome.
	Cleanup(ctx context.Context) error

	// Metrics returns agent-specific counters collected during Execute.
	Metrics() map[string]any
}

// AgentFactory creates agent instances and provides metadata about the
// agent type.
type AgentFactory interface {
	// Create creates a new agent instance with the given configuration.
	Create(config map[string]any) (Agent, error)

	// ID returns the unique identifier for this agent type.
	ID() string

	// Name returns the human-readable name for this agent type.
	Name() string

	// Description returns a description of what this agent does.
	Description() string

	// Schema returns the JSON schema for configuring this agent.
	Schema() map[string]any
}
