// Package workflow orchestrates staged pipeline executions: sequential and
// parallel stage scheduling, decision and risk gating, error policies, and
// execution history.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tradewind-io/tradewind/pkg/aggregate"
	"github.com/tradewind-io/tradewind/pkg/decision"
	"github.com/tradewind-io/tradewind/pkg/eventbus"
	"github.com/tradewind-io/tradewind/pkg/events"
	"github.com/tradewind-io/tradewind/pkg/metrics"
	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/otelhelper"
	"github.com/tradewind-io/tradewind/pkg/persistence"
	"github.com/tradewind-io/tradewind/pkg/risk"
	"github.com/tradewind-io/tradewind/pkg/runner"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Keys the gate reads from analyze-stage output.
const (
	tradeSizeKey      = "trade_size"
	portfolioValueKey = "portfolio_value"
)

// Keys the trade-result recorder reads from verify-stage output.
const (
	profitLossKey        = "profit_loss"
	profitLossPercentKey = "profit_loss_percent"
	symbolKey            = "symbol"
)

// Config key on the first stage of a monitor group selecting the
// aggregation strategy.
const aggregationStrategyKey = "aggregation_strategy"

// Executor walks a workflow's ordered stage list, dispatching each stage
// sequentially or each contiguous monitor group in parallel, consulting the
// decision engine and risk gate before execute stages, and persisting the
// full execution history.
type Executor struct {
	logger      *slog.Logger
	runner      *runner.Runner
	decisions   *decision.Engine
	gate        *risk.Gate
	aggregator  *aggregate.Aggregator
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	active      *activeRegistry
}

// NewExecutor wires the orchestrator. eventBus and m may be nil; events and
// metrics are then skipped.
func NewExecutor(
	logger *slog.Logger,
	stageRunner *runner.Runner,
	decisions *decision.Engine,
	gate *risk.Gate,
	aggregator *aggregate.Aggregator,
	persist persistence.Persistence,
	eventBus eventbus.EventBus,
	m *metrics.Metrics,
) *Executor {
	return &Executor{
		logger:      logger.With("module", "workflow_executor"),
		runner:      stageRunner,
		decisions:   decisions,
		gate:        gate,
		aggregator:  aggregator,
		persistence: persist,
		eventBus:    eventBus,
		metrics:     m,
		tracer:      otel.Tracer("tradewind.workflow"),
		active:      newActiveRegistry(),
	}
}

// run is the per-invocation state of one execution. indexOffset is the
// position of the first sliced stage in the workflow's full sorted list, so
// persisted order indexes stay absolute on partial runs.
type run struct {
	workflow       *models.Workflow
	record         *models.WorkflowExecution
	execCtx        *models.ExecutionContext
	stages         []*models.StageNode
	indexOffset    int
	stageTimeout   time.Duration
	userID         string
	previousOutput map[string]any
	analyzeOutput  map[string]any
}

// ExecuteWorkflow runs the workflow's stage list, optionally sliced by
// options, and returns the terminal execution record. A record is persisted
// and updated even when the run fails; the returned error reflects
// configuration problems or a stop-strategy stage failure.
func (e *Executor) ExecuteWorkflow(ctx context.Context, workflow *models.Workflow, options models.ExecutionOptions, userID string) (*models.WorkflowExecution, error) {
	stages, indexOffset, err := e.resolveStages(workflow, options)
	if err != nil {
		return nil, err
	}

	if workflow.DecisionConfig != nil {
		problems := e.decisions.ValidateConfig(workflow.DecisionConfig)
		if len(problems) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDecisionConfig, strings.Join(problems, "; "))
		}
	}

	record := &models.WorkflowExecution{
		ID:          generateExecutionID(),
		WorkflowID:  workflow.ID,
		Status:      models.ExecutionStatusPending,
		TriggeredBy: userID,
		StartTime:   time.Now().UTC(),
	}

	err = e.persistence.ExecutionRepository().CreateExecution(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.String(otelhelper.ExecutionIDKey, record.ID),
		attribute.String(otelhelper.UserIDKey, userID),
	)
	defer span.End()

	logger := e.logger.With(
		"workflow_id", workflow.ID,
		"execution_id", record.ID,
		"user_id", userID,
	)
	logger.Info("Starting workflow execution", "stages", len(stages))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	execCtx := &models.ExecutionContext{
		ExecutionID:  record.ID,
		WorkflowID:   workflow.ID,
		UserID:       userID,
		StartTime:    record.StartTime,
		AgentResults: make(map[string]any),
	}

	e.active.add(record.ID, &activeExecution{context: execCtx, cancel: cancel})
	defer e.active.remove(record.ID)

	e.metrics.ExecutionStarted()

	record.Status = models.ExecutionStatusRunning
	e.updateStatus(ctx, record, "")

	e.publishEvent(ctx, workflow.ID, events.ExecutionStarted{
		BaseEvent:   e.baseEvent(events.ExecutionStartedEvent, workflow.ID, record.ID),
		TriggeredBy: userID,
		StageCount:  len(stages),
	})
	e.persistEvent(ctx, record.ID, events.ExecutionStartedEvent, "", map[string]any{"stage_count": len(stages)})

	r := &run{
		workflow:     workflow,
		record:       record,
		execCtx:      execCtx,
		stages:       stages,
		indexOffset:  indexOffset,
		stageTimeout: time.Duration(workflow.Settings.ExecutionTimeoutSeconds) * time.Second,
		userID:       userID,
	}

	runErr := e.walk(runCtx, r, logger)

	duration := time.Since(record.StartTime)

	switch {
	case runErr == nil && runCtx.Err() == nil:
		record.Status = models.ExecutionStatusCompleted
		e.updateStatus(ctx, record, "")

		e.publishEvent(ctx, workflow.ID, events.ExecutionCompleted{
			BaseEvent:  e.baseEvent(events.ExecutionCompletedEvent, workflow.ID, record.ID),
			Duration:   duration,
			StageCount: len(stages),
		})
		e.persistEvent(ctx, record.ID, events.ExecutionCompletedEvent, "", map[string]any{"duration_ms": duration.Milliseconds()})

		logger.Info("Workflow execution completed", "duration_ms", duration.Milliseconds())

	case runErr == nil:
		// CancelExecution already transitioned the persisted record.
		record.Status = models.ExecutionStatusCancelled
		logger.Info("Workflow execution cancelled", "duration_ms", duration.Milliseconds())

	default:
		record.Status = models.ExecutionStatusFailed
		record.Error = runErr.Error()
		otelhelper.SetError(span, runErr)
		e.updateStatus(ctx, record, runErr.Error())

		e.publishEvent(ctx, workflow.ID, events.ExecutionFailed{
			BaseEvent: e.baseEvent(events.ExecutionFailedEvent, workflow.ID, record.ID),
			Error:     runErr.Error(),
			Duration:  duration,
		})
		e.persistEvent(ctx, record.ID, events.ExecutionFailedEvent, "", map[string]any{"error": runErr.Error()})

		logger.Error("Workflow execution failed", "error", runErr)
	}

	e.metrics.ExecutionFinished(string(record.Status))

	return record, runErr
}

// walk advances the index cursor over the sliced stage list, grouping
// contiguous monitor stages for parallel dispatch and gating execute stages
// behind the decision engine and risk gate.
func (e *Executor) walk(ctx context.Context, r *run, logger *slog.Logger) error {
	i := 0
	for i < len(r.stages) {
		if ctx.Err() != nil {
			return nil
		}

		e.active.setProgress(r.record.ID, r.indexOffset+i)

		stage := r.stages[i]

		if stage.Category == models.CategoryMonitor {
			group := contiguousRun(r.stages, i, models.CategoryMonitor)

			err := e.runParallelGroup(ctx, r, group, logger)
			if err != nil {
				return err
			}

			i += len(group)

			continue
		}

		result, err := e.runStage(ctx, r, stage, r.indexOffset+i, logger)
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return nil
		}

		if result.Success && stage.Category == models.CategoryVerify && r.userID != "" {
			e.recordVerifiedTrade(ctx, r, result, logger)
		}

		// The gate is consulted even when the analyze stage failed under a
		// skip or continue strategy; execute stages never dispatch unexamined.
		if stage.Category == models.CategoryAnalyze && i+1 < len(r.stages) &&
			r.stages[i+1].Category == models.CategoryExecute {
			blocked, source, detail := e.evaluateGate(ctx, r, logger)
			if blocked {
				i = e.skipExecuteStages(ctx, r, i+1, source, detail, logger)

				continue
			}
		}

		i++
	}

	return nil
}

// runStage executes one sequential stage, persists its result, emits its
// lifecycle events, and applies the workflow's error-handling strategy.
// A non-nil error means the whole execution must abort.
func (e *Executor) runStage(ctx context.Context, r *run, stage *models.StageNode, index int, logger *slog.Logger) (*runner.StageResult, error) {
	input := r.previousOutput
	if stage.Category == models.CategoryCollect || input == nil {
		// Collect stages originate data and never see upstream output.
		input = map[string]any{}
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "stage.run",
		attribute.String(otelhelper.AgentIDKey, stage.ID),
		attribute.String(otelhelper.AgentTypeKey, stage.AgentType),
		attribute.String(otelhelper.CategoryKey, string(stage.Category)),
		attribute.String(otelhelper.ExecutionIDKey, r.record.ID),
	)
	defer span.End()

	e.publishEvent(ctx, r.workflow.ID, events.AgentStarted{
		BaseEvent: e.baseEvent(events.AgentStartedEvent, r.workflow.ID, r.record.ID),
		AgentID:   stage.ID,
		AgentType: stage.AgentType,
		Category:  stage.Category,
	})
	e.persistEvent(ctx, r.record.ID, events.AgentStartedEvent, stage.ID, nil)

	result := e.runner.Run(ctx, stage, input, r.stageTimeout)

	e.recordStageResult(ctx, r, stage, index, input, result)
	e.metrics.StageSettled(string(stage.Category), stageStatus(result), result.Duration().Seconds())

	if !result.Success {
		// A cancelled run is not a stage failure; the caller finalizes it.
		if ctx.Err() != nil {
			return result, nil
		}

		otelhelper.SetError(span, result.Err)

		e.publishEvent(ctx, r.workflow.ID, events.AgentFailed{
			BaseEvent:  e.baseEvent(events.AgentFailedEvent, r.workflow.ID, r.record.ID),
			AgentID:    stage.ID,
			Error:      result.Err.Error(),
			DurationMs: result.Duration().Milliseconds(),
		})
		e.persistEvent(ctx, r.record.ID, events.AgentFailedEvent, stage.ID, map[string]any{"error": result.Err.Error()})

		strategy := r.workflow.Settings.ErrorHandling.Strategy
		if strategy == models.ErrorStrategyStop || strategy == "" {
			return result, fmt.Errorf("stage %s failed: %w", stage.ID, result.Err)
		}

		logger.Warn("Stage failed, continuing per error strategy",
			"agent_id", stage.ID,
			"strategy", strategy,
			"error", result.Err,
		)

		return result, nil
	}

	r.execCtx.AgentResults[stage.ID] = result.OutputData
	r.previousOutput = result.OutputData

	if stage.Category == models.CategoryAnalyze {
		r.analyzeOutput = result.OutputData
	}

	e.publishEvent(ctx, r.workflow.ID, events.AgentCompleted{
		BaseEvent:  e.baseEvent(events.AgentCompletedEvent, r.workflow.ID, r.record.ID),
		AgentID:    stage.ID,
		OutputData: result.OutputData,
		DurationMs: result.Duration().Milliseconds(),
	})
	e.persistEvent(ctx, r.record.ID, events.AgentCompletedEvent, stage.ID, nil)

	return result, nil
}

// runParallelGroup dispatches a contiguous monitor group concurrently, waits
// for every member to settle, and aggregates the outputs into the next
// stage's input. Individual member failures never abort the group.
func (e *Executor) runParallelGroup(ctx context.Context, r *run, group []*models.StageNode, logger *slog.Logger) error {
	logger.Info("Dispatching parallel stage group", "size", len(group))

	start := time.Now()
	results := make([]*runner.StageResult, len(group))

	var wg sync.WaitGroup

	for n, stage := range group {
		e.publishEvent(ctx, r.workflow.ID, events.AgentStarted{
			BaseEvent: e.baseEvent(events.AgentStartedEvent, r.workflow.ID, r.record.ID),
			AgentID:   stage.ID,
			AgentType: stage.AgentType,
			Category:  stage.Category,
		})
		e.persistEvent(ctx, r.record.ID, events.AgentStartedEvent, stage.ID, nil)

		wg.Add(1)

		go func(n int, stage *models.StageNode) {
			defer wg.Done()

			results[n] = e.runner.Run(ctx, stage, r.previousOutput, r.stageTimeout)
		}(n, stage)
	}

	wg.Wait()

	wallClock := time.Since(start)

	baseIndex := stageIndex(r.stages, group[0].ID)

	for n, result := range results {
		e.recordStageResult(ctx, r, group[n], r.indexOffset+baseIndex+n, r.previousOutput, result)
		e.metrics.StageSettled(string(group[n].Category), stageStatus(result), result.Duration().Seconds())

		if result.Success {
			r.execCtx.AgentResults[group[n].ID] = result.OutputData

			e.publishEvent(ctx, r.workflow.ID, events.AgentCompleted{
				BaseEvent:  e.baseEvent(events.AgentCompletedEvent, r.workflow.ID, r.record.ID),
				AgentID:    group[n].ID,
				DurationMs: result.Duration().Milliseconds(),
			})
			e.persistEvent(ctx, r.record.ID, events.AgentCompletedEvent, group[n].ID, nil)
		} else {
			e.publishEvent(ctx, r.workflow.ID, events.AgentFailed{
				BaseEvent:  e.baseEvent(events.AgentFailedEvent, r.workflow.ID, r.record.ID),
				AgentID:    group[n].ID,
				Error:      result.Err.Error(),
				DurationMs: result.Duration().Milliseconds(),
			})
			e.persistEvent(ctx, r.record.ID, events.AgentFailedEvent, group[n].ID, map[string]any{"error": result.Err.Error()})
		}
	}

	strategy := aggregate.Strategy(stringConfig(group[0].Config, aggregationStrategyKey))
	r.previousOutput = e.aggregator.Aggregate(results, strategy, wallClock)

	return nil
}

// evaluateGate consults the decision engine and then the risk gate. It
// returns whether the downstream execute stages must be skipped, along with
// the blocking source and detail for events. On a full pass it registers the
// trade so the concurrent-trades counter covers the execute stage.
func (e *Executor) evaluateGate(ctx context.Context, r *run, logger *slog.Logger) (bool, string, map[string]any) {
	gateData := r.analyzeOutput
	if gateData == nil {
		gateData = r.previousOutput
	}

	if r.workflow.DecisionConfig != nil {
		verdict, err := e.decisions.Evaluate(r.workflow.DecisionConfig, gateData)
		if err != nil {
			logger.Error("Decision evaluation failed, blocking execute stages", "error", err)

			return true, "decision", map[string]any{"error": err.Error()}
		}

		if !verdict.Passed {
			logger.Info("Decision blocked execute stages", "rules", len(verdict.RuleResults))

			return true, "decision", map[string]any{"rule_results": verdict.RuleResults}
		}
	}

	controls := r.workflow.Settings.RiskControls
	if controls == nil || r.userID == "" {
		return false, "", nil
	}

	tradeSize := numberConfig(gateData, tradeSizeKey)
	portfolioValue := numberConfig(gateData, portfolioValueKey)

	assessment, err := e.gate.CheckBeforeExecution(ctx, r.userID, tradeSize, portfolioValue, controls, r.record.ID)
	if err != nil {
		logger.Error("Risk check failed, blocking execute stages", "error", err)

		return true, "risk", map[string]any{"error": err.Error()}
	}

	if !assessment.Allowed {
		logger.Info("Risk gate blocked execute stages", "checks", len(assessment.Checks))

		return true, "risk", map[string]any{"checks": assessment.Checks}
	}

	err = e.gate.RegisterTrade(ctx, r.userID)
	if err != nil {
		logger.Warn("Failed to register trade", "error", err)
	}

	return false, "", nil
}

// skipExecuteStages records a SKIPPED result for every contiguous execute
// stage starting at index and returns the index of the first stage after the
// run. The stages are never dispatched.
func (e *Executor) skipExecuteStages(ctx context.Context, r *run, index int, source string, detail map[string]any, logger *slog.Logger) int {
	reason := fmt.Sprintf("blocked by %s gate", source)

	e.publishEvent(ctx, r.workflow.ID, events.GateBlocked{
		BaseEvent: e.baseEvent(events.GateBlockedEvent, r.workflow.ID, r.record.ID),
		Source:    source,
		Detail:    detail,
	})
	e.persistEvent(ctx, r.record.ID, events.GateBlockedEvent, "", detail)
	e.metrics.GateBlocked(source)

	skipped := contiguousRun(r.stages, index, models.CategoryExecute)

	now := time.Now().UTC()

	for n, stage := range skipped {
		e.persistAgentResult(ctx, &models.AgentExecutionResult{
			ExecutionID: r.record.ID,
			AgentID:     stage.ID,
			Status:      models.AgentResultSkipped,
			OrderIndex:  r.indexOffset + index + n,
			StartTime:   now,
			EndTime:     now,
			Error:       reason,
		})

		e.publishEvent(ctx, r.workflow.ID, events.AgentSkipped{
			BaseEvent: e.baseEvent(events.AgentSkippedEvent, r.workflow.ID, r.record.ID),
			AgentID:   stage.ID,
			Reason:    reason,
		})
		e.persistEvent(ctx, r.record.ID, events.AgentSkippedEvent, stage.ID, map[string]any{"reason": reason})

		logger.Info("Execute stage skipped", "agent_id", stage.ID, "source", source)
	}

	return index + len(skipped)
}

// recordVerifiedTrade feeds a verify stage's profit/loss figures back into
// the risk gate. Best effort: accounting failures are logged, never fatal.
func (e *Executor) recordVerifiedTrade(ctx context.Context, r *run, result *runner.StageResult, logger *slog.Logger) {
	tradeResult := models.TradeResult{
		UserID:            r.userID,
		ExecutionID:       r.record.ID,
		Symbol:            stringConfig(result.OutputData, symbolKey),
		ProfitLoss:        numberConfig(result.OutputData, profitLossKey),
		ProfitLossPercent: numberConfig(result.OutputData, profitLossPercentKey),
	}

	err := e.gate.RecordTradeResult(ctx, tradeResult)
	if err != nil {
		logger.Warn("Failed to record trade result", "error", err)
	}
}

// CancelExecution cooperatively cancels an in-flight run. The run's context
// is cancelled and the record marked CANCELLED; a stage already dispatched
// settles in the background.
func (e *Executor) CancelExecution(ctx context.Context, executionID, cancelledBy string) error {
	entry, ok := e.active.get(executionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrExecutionNotRunning, executionID)
	}

	err := e.persistence.ExecutionRepository().UpdateStatus(ctx, executionID, models.ExecutionStatusCancelled, "")
	if err != nil {
		return fmt.Errorf("failed to mark execution cancelled: %w", err)
	}

	e.publishEvent(ctx, entry.context.WorkflowID, events.ExecutionCancelled{
		BaseEvent:   e.baseEvent(events.ExecutionCancelledEvent, entry.context.WorkflowID, executionID),
		CancelledBy: cancelledBy,
	})
	e.persistEvent(ctx, executionID, events.ExecutionCancelledEvent, "", map[string]any{"cancelled_by": cancelledBy})

	entry.cancel()
	e.active.remove(executionID)

	e.logger.Info("Execution cancelled", "execution_id", executionID, "cancelled_by", cancelledBy)

	return nil
}

// RetryExecution starts a brand-new execution of the workflow from
// fromAgentID. The failed execution is never mutated; it only proves the
// retry is legitimate.
func (e *Executor) RetryExecution(ctx context.Context, workflow *models.Workflow, failedExecutionID, fromAgentID, userID string) (*models.WorkflowExecution, error) {
	failed, err := e.persistence.ExecutionRepository().FindByID(ctx, failedExecutionID)
	if err != nil {
		return nil, err
	}

	if failed.Status != models.ExecutionStatusFailed {
		return nil, fmt.Errorf("%w: %s is %s", ErrExecutionNotFailed, failedExecutionID, failed.Status)
	}

	e.logger.Info("Retrying failed execution",
		"failed_execution_id", failedExecutionID,
		"from_agent", fromAgentID,
	)

	return e.ExecuteWorkflow(ctx, workflow, models.ExecutionOptions{StartFromAgent: fromAgentID}, userID)
}

// GetActiveExecutions returns a snapshot of every in-flight execution
// context.
func (e *Executor) GetActiveExecutions() []*models.ExecutionContext {
	return e.active.list()
}

// IsExecutionActive reports whether the execution id is in the active
// registry.
func (e *Executor) IsExecutionActive(executionID string) bool {
	_, ok := e.active.get(executionID)

	return ok
}

// resolveStages sorts the workflow's stages and slices them per options. The
// returned offset is the slice's position in the full sorted list.
func (e *Executor) resolveStages(workflow *models.Workflow, options models.ExecutionOptions) ([]*models.StageNode, int, error) {
	stages := workflow.SortedStages()
	if len(stages) == 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrNoStages, workflow.ID)
	}

	startIndex := 0

	if options.StartFromAgent != "" {
		startIndex = stageIndex(stages, options.StartFromAgent)
		if startIndex < 0 {
			return nil, 0, fmt.Errorf("%w: start stage %q", ErrStageNotFound, options.StartFromAgent)
		}
	}

	endIndex := len(stages) - 1

	if options.StopAtAgent != "" {
		endIndex = stageIndex(stages, options.StopAtAgent)
		if endIndex < 0 {
			return nil, 0, fmt.Errorf("%w: stop stage %q", ErrStageNotFound, options.StopAtAgent)
		}
	}

	if startIndex > endIndex {
		return nil, 0, fmt.Errorf("%w: start stage %q is after stop stage %q",
			ErrStageNotFound, options.StartFromAgent, options.StopAtAgent)
	}

	return stages[startIndex : endIndex+1], startIndex, nil
}

func (e *Executor) recordStageResult(ctx context.Context, r *run, stage *models.StageNode, index int, input map[string]any, result *runner.StageResult) {
	record := &models.AgentExecutionResult{
		ExecutionID: r.record.ID,
		AgentID:     stage.ID,
		Status:      models.AgentResultSuccess,
		OrderIndex:  index,
		InputData:   input,
		OutputData:  result.OutputData,
		StartTime:   result.StartTime,
		EndTime:     result.EndTime,
		Metrics:     result.Metrics,
	}

	if !result.Success {
		record.Status = models.AgentResultFailed
		record.Error = result.Err.Error()
	}

	e.persistAgentResult(ctx, record)
}

func (e *Executor) updateStatus(ctx context.Context, record *models.WorkflowExecution, errorMessage string) {
	err := e.persistence.ExecutionRepository().UpdateStatus(ctx, record.ID, record.Status, errorMessage)
	if err != nil {
		e.logger.Warn("Failed to update execution status",
			"execution_id", record.ID,
			"status", record.Status,
			"error", err,
		)
	}
}

// contiguousRun returns the maximal run of stages of the given category
// starting at index.
func contiguousRun(stages []*models.StageNode, index int, category models.Category) []*models.StageNode {
	end := index
	for end < len(stages) && stages[end].Category == category {
		end++
	}

	return stages[index:end]
}

func stageIndex(stages []*models.StageNode, id string) int {
	for i, stage := range stages {
		if stage.ID == id {
			return i
		}
	}

	return -1
}

func stageStatus(result *runner.StageResult) string {
	if result.Success {
		return string(models.AgentResultSuccess)
	}

	return string(models.AgentResultFailed)
}

func stringConfig(data map[string]any, key string) string {
	if data == nil {
		return ""
	}

	value, _ := data[key].(string)

	return value
}

func numberConfig(data map[string]any, key string) float64 {
	if data == nil {
		return 0
	}

	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}

	return 0
}

func generateExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}
