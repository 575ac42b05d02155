// Package testutil provides configurable fake agents and workflow builders
// for orchestrator tests.
package testutil

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/protocol"
)

// FakeAgentFactory produces agents that return a fixed output, fail with a
// fixed error, or sleep until cancelled. Executions and cleanups are counted
// so tests can assert dispatch behavior.
type FakeAgentFactory struct {
	AgentType string
	Output    map[string]any
	Err       error
	Delay     time.Duration

	Executions int64
	Cleanups   int64
}

func NewFakeAgentFactory(agentType string) *FakeAgentFactory {
	return &FakeAgentFactory{AgentType: agentType}
}

// WithOutput makes every produced agent return output.
func (f *FakeAgentFactory) WithOutput(output map[string]any) *FakeAgentFactory {
	f.Output = output

	return f
}

// WithError makes every produced agent fail with err.
func (f *FakeAgentFactory) WithError(err error) *FakeAgentFactory {
	f.Err = err

	return f
}

// WithDelay makes every produced agent sleep before settling, or until its
// context is cancelled.
func (f *FakeAgentFactory) WithDelay(delay time.Duration) *FakeAgentFactory {
	f.Delay = delay

	return f
}

func (f *FakeAgentFactory) ExecutionCount() int64 {
	return atomic.LoadInt64(&f.Executions)
}

func (f *FakeAgentFactory) CleanupCount() int64 {
	return atomic.LoadInt64(&f.Cleanups)
}

func (f *FakeAgentFactory) Create(config map[string]any) (protocol.Agent, error) {
	return &fakeAgent{factory: f}, nil
}

func (f *FakeAgentFactory) ID() string {
	return f.AgentType
}

func (f *FakeAgentFactory) Name() string {
	return "Fake " + f.AgentType
}

func (f *FakeAgentFactory) Description() string {
	return "Configurable fake agent for tests"
}

func (f *FakeAgentFactory) Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
	}
}

type fakeAgent struct {
	factory *FakeAgentFactory
}

func (a *fakeAgent) Execute(ctx context.Context, input map[string]any, logger *slog.Logger) (map[string]any, error) {
	atomic.AddInt64(&a.factory.Executions, 1)

	if a.factory.Delay > 0 {
		select {
		case <-time.After(a.factory.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if a.factory.Err != nil {
		return nil, a.factory.Err
	}

	output := make(map[string]any, len(a.factory.Output))
	for k, v := range a.factory.Output {
		output[k] = v
	}

	return output, nil
}

func (a *fakeAgent) Cleanup(ctx context.Context) error {
	atomic.AddInt64(&a.factory.Cleanups, 1)

	return nil
}

func (a *fakeAgent) Metrics() map[string]any {
	return map[string]any{"executions": a.factory.ExecutionCount()}
}

// Stage builds a StageNode for tests.
func Stage(id, agentType string, category models.Category, order int) *models.StageNode {
	return &models.StageNode{
		ID:        id,
		AgentType: agentType,
		Category:  category,
		Name:      id,
		Order:     order,
		Config:    map[string]any{},
	}
}
