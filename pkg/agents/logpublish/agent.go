// Package logpublish provides a structured-log sink agent for publish-category stages.
package logpublish

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tradewind-io/tradewind/pkg/protocol"
)

func NewAgentFactory() *AgentFactory {
	return &AgentFactory{}
}

type AgentFactory struct{}

func (f *AgentFactory) ID() string {
	return "log_publish"
}

func (f *AgentFactory) Name() string {
	return "Log Publish"
}

func (f *AgentFactory) Description() string {
	return "Publishes the upstream output to the structured log. Useful as a terminal stage in development pipelines."
}

func (f *AgentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message logged alongside the data.",
			},
		},
	}
}

func (f *AgentFactory) Create(config map[string]any) (protocol.Agent, error) {
	message, _ := config["message"].(string)
	if message == "" {
		message = "Pipeline output"
	}

	return &Agent{Message: message}, nil
}

type Agent struct {
	Message string

	published atomic.Int64
}

func (a *Agent) Execute(ctx context.Context, input map[string]any, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("module", "log_publish_agent")
	logger.InfoContext(ctx, a.Message, "data", input)

	a.published.Add(1)

	return map[string]any{
		"published":    true,
		"published_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (a *Agent) Cleanup(_ context.Context) error {
	return nil
}

func (a *Agent) Metrics() map[string]any {
	return map[string]any{"published": a.published.Load()}
}
