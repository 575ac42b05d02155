// Package runner executes single pipeline stages with bounded timeouts.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/registry"
)

// ErrStageTimeout indicates the stage did not settle within its deadline.
// The underlying agent call is abandoned, not interrupted; its context is
// cancelled so well-behaved agents stop on their own.
var ErrStageTimeout = errors.New("stage execution timed out")

const defaultStageTimeout = 60 * time.Second

// StageResult is the settled outcome of one stage dispatch.
type StageResult struct {
	AgentID    string
	AgentType  string
	Success    bool
	OutputData map[string]any
	Err        error
	StartTime  time.Time
	EndTime    time.Time
	Metrics    map[string]any
}

// Duration is the wall-clock time the stage took to settle.
func (r *StageResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

type Runner struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewRunner(reg *registry.Registry, logger *slog.Logger) *Runner {
	return &Runner{
		registry: reg,
		logger:   logger,
	}
}

// Run instantiates the stage's agent, executes it against input, and settles
// within timeout. Cleanup is guaranteed to run exactly once per created
// agent, even when the caller has already moved on after a timeout.
func (r *Runner) Run(ctx context.Context, stage *models.StageNode, input map[string]any, timeout time.Duration) *StageResult {
	if timeout <= 0 {
		timeout = defaultStageTimeout
	}

	start := time.Now()

	result := &StageResult{
		AgentID:   stage.ID,
		AgentType: stage.AgentType,
		StartTime: start,
	}

	logger := r.logger.With(
		"agent_id", stage.ID,
		"agent_type", stage.AgentType,
		"category", stage.Category,
	)

	agent, err := r.registry.CreateAgent(stage.AgentType, stage.Config)
	if err != nil {
		result.Err = fmt.Errorf("failed to create agent: %w", err)
		result.EndTime = time.Now()

		return result
	}

	agentCtx, cancel := context.WithTimeout(ctx, timeout)

	type settled struct {
		output  map[string]any
		metrics map[string]any
		err     error
	}

	done := make(chan settled, 1)

	go func() {
		defer func() {
			cleanupErr := agent.Cleanup(context.WithoutCancel(ctx))
			if cleanupErr != nil {
				logger.Error("Agent cleanup failed", "error", cleanupErr)
			}
		}()

		output, execErr := agent.Execute(agentCtx, input, logger)
		done <- settled{output: output, metrics: agent.Metrics(), err: execErr}
	}()

	select {
	case s := <-done:
		cancel()

		result.OutputData = s.output
		result.Metrics = s.metrics
		result.Err = s.err
		result.Success = s.err == nil

	case <-agentCtx.Done():
		cancel()

		if ctx.Err() != nil {
			result.Err = ctx.Err()
		} else {
			result.Err = fmt.Errorf("%w after %s", ErrStageTimeout, timeout)
		}

		logger.Warn("Stage abandoned", "error", result.Err)
	}

	result.EndTime = time.Now()

	if result.Success {
		logger.Info("Stage completed", "duration_ms", result.Duration().Milliseconds())
	}

	return result
}
