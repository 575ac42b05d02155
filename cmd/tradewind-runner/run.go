package main

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/tradewind-io/tradewind/pkg/aggregate"
	"github.com/tradewind-io/tradewind/pkg/channels/gochannel"
	"github.com/tradewind-io/tradewind/pkg/decision"
	"github.com/tradewind-io/tradewind/pkg/eventbus"
	"github.com/tradewind-io/tradewind/pkg/events"
	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/persistence"
	"github.com/tradewind-io/tradewind/pkg/registry"
	"github.com/tradewind-io/tradewind/pkg/risk"
	"github.com/tradewind-io/tradewind/pkg/runner"
	"github.com/tradewind-io/tradewind/pkg/workflow"
)

type runOptions struct {
	workflowID string
	userID     string
	startFrom  string
	stopAt     string
	redisURL   string
}

// runWorkflow executes one workflow run and reports stage progress from the
// event bus as it happens.
func runWorkflow(ctx context.Context, logger *slog.Logger, reg *registry.Registry, persist persistence.Persistence, opts runOptions) error {
	wf, err := persist.WorkflowRepository().GetByID(ctx, opts.workflowID)
	if err != nil {
		return err
	}

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	if err != nil {
		return err
	}

	bus := eventbus.NewWatermillEventBus(pub, sub)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	if err := subscribeProgress(ctx, bus, logger); err != nil {
		return err
	}

	var store risk.Store = risk.NewMemoryStore()

	if opts.redisURL != "" {
		redisStore, err := risk.NewRedisStoreFromURL(opts.redisURL)
		if err != nil {
			return err
		}

		store = redisStore
	}

	executor := workflow.NewExecutor(
		logger,
		runner.NewRunner(reg, logger),
		decision.NewEngine(logger),
		risk.NewGate(store, logger),
		aggregate.NewAggregator(logger),
		persist,
		bus,
		nil,
	)

	options := models.ExecutionOptions{
		StartFromAgent: opts.startFrom,
		StopAtAgent:    opts.stopAt,
	}

	execution, err := executor.ExecuteWorkflow(ctx, wf, options, opts.userID)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Run finished",
		"execution_id", execution.ID,
		"status", execution.Status,
	)

	return nil
}

// subscribeProgress logs per-stage lifecycle events while the run executes.
func subscribeProgress(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	handlers := map[events.EventType]eventbus.EventHandler{
		events.AgentStartedEvent: func(ctx context.Context, event any) error {
			if e, ok := event.(*events.AgentStarted); ok {
				logger.InfoContext(ctx, "Stage started", "agent_id", e.AgentID, "category", e.Category)
			}

			return nil
		},
		events.AgentCompletedEvent: func(ctx context.Context, event any) error {
			if e, ok := event.(*events.AgentCompleted); ok {
				logger.InfoContext(ctx, "Stage completed", "agent_id", e.AgentID, "duration_ms", e.DurationMs)
			}

			return nil
		},
		events.AgentFailedEvent: func(ctx context.Context, event any) error {
			if e, ok := event.(*events.AgentFailed); ok {
				logger.WarnContext(ctx, "Stage failed", "agent_id", e.AgentID, "error", e.Error)
			}

			return nil
		},
		events.AgentSkippedEvent: func(ctx context.Context, event any) error {
			if e, ok := event.(*events.AgentSkipped); ok {
				logger.InfoContext(ctx, "Stage skipped", "agent_id", e.AgentID, "reason", e.Reason)
			}

			return nil
		},
		events.GateBlockedEvent: func(ctx context.Context, event any) error {
			if e, ok := event.(*events.GateBlocked); ok {
				logger.WarnContext(ctx, "Gate blocked execute stages", "source", e.Source)
			}

			return nil
		},
	}

	for eventType, handler := range handlers {
		if err := bus.Handle(eventType, handler); err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
