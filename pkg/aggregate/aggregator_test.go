package aggregate

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradewind-io/tradewind/pkg/runner"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func successResult(agentID string, output map[string]any, duration time.Duration) *runner.StageResult {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	return &runner.StageResult{
		AgentID:    agentID,
		AgentType:  "fake",
		Success:    true,
		OutputData: output,
		StartTime:  start,
		EndTime:    start.Add(duration),
	}
}

func TestAggregate_AverageStrategy(t *testing.T) {
	aggregator := newTestAggregator()

	results := []*runner.StageResult{
		successResult("a", map[string]any{"score": 10}, 10*time.Millisecond),
		successResult("b", map[string]any{"score": 20}, 20*time.Millisecond),
		successResult("c", map[string]any{"score": 30}, 30*time.Millisecond),
	}

	output := aggregator.Aggregate(results, StrategyAverage, 30*time.Millisecond)

	assert.InDelta(t, 20.0, output["score"], 1e-9)
	assert.InDelta(t, 10.0, output["score_min"], 1e-9)
	assert.InDelta(t, 30.0, output["score_max"], 1e-9)
	assert.Equal(t, 3, output["score_count"])
}

func TestAggregate_FirstAndLast(t *testing.T) {
	aggregator := newTestAggregator()

	results := []*runner.StageResult{
		successResult("a", map[string]any{"v": 1}, time.Millisecond),
		successResult("b", map[string]any{"v": 2}, time.Millisecond),
	}

	first := aggregator.Aggregate(results, StrategyFirst, 0)
	assert.Equal(t, 1, first["v"])

	meta, ok := first["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a", meta["selected_agent"])

	last := aggregator.Aggregate(results, StrategyLast, 0)
	assert.Equal(t, 2, last["v"])
}

func TestAggregate_MergeDefault(t *testing.T) {
	aggregator := newTestAggregator()

	results := []*runner.StageResult{
		successResult("btc", map[string]any{"price": 50000.0, "exchange": "a"}, time.Millisecond),
		successResult("eth", map[string]any{"price": 3000.0, "volume": 12.5}, time.Millisecond),
	}

	// Empty strategy falls back to merge.
	output := aggregator.Aggregate(results, "", 0)

	btc, ok := output["btc"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 50000.0, btc["price"])

	// Non-conflicting key hoisted, colliding numeric key collected.
	assert.Equal(t, 12.5, output["volume"])
	assert.ElementsMatch(t, []any{50000.0, 3000.0}, output["price"])
}

func TestAggregate_SkipsFailedResults(t *testing.T) {
	aggregator := newTestAggregator()

	failed := successResult("bad", nil, time.Millisecond)
	failed.Success = false
	failed.Err = errors.New("boom")

	results := []*runner.StageResult{
		failed,
		successResult("good", map[string]any{"score": 42}, time.Millisecond),
	}

	output := aggregator.Aggregate(results, StrategyAverage, 0)
	assert.InDelta(t, 42.0, output["score"], 1e-9)

	meta, ok := output["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, meta["total"])
	assert.Equal(t, 1, meta["successful"])
	assert.Equal(t, 1, meta["failed"])
}

func TestAggregate_NoSuccessfulResults(t *testing.T) {
	aggregator := newTestAggregator()

	failed := successResult("bad", nil, time.Millisecond)
	failed.Success = false
	failed.Err = errors.New("boom")

	output := aggregator.Aggregate([]*runner.StageResult{failed}, StrategyMerge, 0)

	meta, ok := output["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0, meta["successful"])
	assert.Len(t, output, 1)
}

func TestAggregate_Metadata(t *testing.T) {
	aggregator := newTestAggregator()

	results := []*runner.StageResult{
		successResult("fast", map[string]any{"v": 1}, 10*time.Millisecond),
		successResult("slow", map[string]any{"v": 2}, 40*time.Millisecond),
	}

	output := aggregator.Aggregate(results, StrategyMerge, 40*time.Millisecond)

	meta, ok := output["metadata"].(map[string]any)
	require.True(t, ok)

	bottleneck, ok := meta["bottleneck"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "slow", bottleneck["agent_id"])

	// Sequential sum 50ms, wall clock 40ms: 20% saved running in parallel.
	assert.InDelta(t, 20.0, meta["parallel_efficiency_percent"], 1e-9)

	sources, ok := meta["sources"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, sources, 2)
}

func TestAggregate_WeightedFavorsFasterStages(t *testing.T) {
	aggregator := newTestAggregator()

	results := []*runner.StageResult{
		successResult("fast", map[string]any{"score": 100.0}, 10*time.Millisecond),
		successResult("slow", map[string]any{"score": 0.0}, 100*time.Millisecond),
	}

	output := aggregator.Aggregate(results, StrategyWeighted, 0)

	score, ok := output["score"].(float64)
	require.True(t, ok)

	// The fast stage carries most of the weight, pulling the blend well
	// above the midpoint.
	assert.Greater(t, score, 50.0)
	assert.Less(t, score, 100.0)
}
