// Package transform provides a data-shaping agent for process-category stages.
package transform

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/tradewind-io/tradewind/pkg/decision"
	"github.com/tradewind-io/tradewind/pkg/protocol"
)

func NewAgentFactory() *AgentFactory {
	return &AgentFactory{}
}

type AgentFactory struct{}

func (f *AgentFactory) ID() string {
	return "transform"
}

func (f *AgentFactory) Name() string {
	return "Transform"
}

func (f *AgentFactory) Description() string {
	return "Reshapes upstream output by mapping output keys to dot-separated paths into the input data."
}

func (f *AgentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mapping": map[string]any{
				"type":        "object",
				"description": "Output key to input path, e.g. {\"price\": \"ticker.last\", \"top\": \"bids[0].price\"}.",
			},
			"strict": map[string]any{
				"type":        "boolean",
				"description": "Fail when a mapped path is missing instead of omitting the key.",
			},
		},
		"required": []any{"mapping"},
	}
}

func (f *AgentFactory) Create(config map[string]any) (protocol.Agent, error) {
	return NewAgent(config)
}

type Agent struct {
	Mapping map[string]string
	Strict  bool

	applied atomic.Int64
	missed  atomic.Int64
}

func NewAgent(config map[string]any) (*Agent, error) {
	rawMapping, ok := config["mapping"].(map[string]any)
	if !ok || len(rawMapping) == 0 {
		return nil, fmt.Errorf("missing or invalid 'mapping' in configuration")
	}

	mapping := make(map[string]string, len(rawMapping))

	for key, value := range rawMapping {
		path, ok := value.(string)
		if !ok || path == "" {
			return nil, fmt.Errorf("mapping for %q must be a non-empty path string", key)
		}

		mapping[key] = path
	}

	strict, _ := config["strict"].(bool)

	return &Agent{Mapping: mapping, Strict: strict}, nil
}

func (a *Agent) Execute(ctx context.Context, input map[string]any, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("module", "transform_agent")
	logger.InfoContext(ctx, "Executing transform", "mappings", len(a.Mapping))

	output := make(map[string]any, len(a.Mapping))

	for key, path := range a.Mapping {
		value, found := decision.ResolvePath(input, path)
		if !found {
			a.missed.Add(1)

			if a.Strict {
				return nil, fmt.Errorf("path %q not found in input data", path)
			}

			continue
		}

		output[key] = value
		a.applied.Add(1)
	}

	return output, nil
}

func (a *Agent) Cleanup(_ context.Context) error {
	return nil
}

func (a *Agent) Metrics() map[string]any {
	return map[string]any{
		"fields_applied": a.applied.Load(),
		"fields_missed":  a.missed.Load(),
	}
}
