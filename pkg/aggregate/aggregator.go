// Package aggregate combines the outputs of concurrently-executed stage groups.
package aggregate

import (
	"log/slog"
	"time"

	"github.com/tradewind-io/tradewind/pkg/runner"
)

// Strategy selects how outputs of a parallel stage group are combined.
type Strategy string

const (
	StrategyFirst    Strategy = "first"
	StrategyLast     Strategy = "last"
	StrategyAverage  Strategy = "average"
	StrategyWeighted Strategy = "weighted"
	StrategyMerge    Strategy = "merge" // default
)

const metadataKey = "metadata"

type Aggregator struct {
	logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate combines the settled results of one parallel group into a single
// downstream input. It never fails: when no member succeeded the returned
// aggregate is empty apart from failure metadata. wallClock is the elapsed
// time of the whole group dispatch; pass zero when unknown and the parallel
// efficiency figure is omitted.
func (a *Aggregator) Aggregate(results []*runner.StageResult, strategy Strategy, wallClock time.Duration) map[string]any {
	if strategy == "" {
		strategy = StrategyMerge
	}

	successful := make([]*runner.StageResult, 0, len(results))

	for _, r := range results {
		if r.Success {
			successful = append(successful, r)
		}
	}

	meta := a.buildMetadata(results, successful, strategy, wallClock)

	if len(successful) == 0 {
		a.logger.Warn("No successful results to aggregate", "total", len(results), "strategy", strategy)

		return map[string]any{metadataKey: meta}
	}

	var output map[string]any

	switch strategy {
	case StrategyFirst:
		output = passthrough(successful[0])
		meta["selected_agent"] = successful[0].AgentID
	case StrategyLast:
		output = passthrough(successful[len(successful)-1])
		meta["selected_agent"] = successful[len(successful)-1].AgentID
	case StrategyAverage:
		output = average(successful)
	case StrategyWeighted:
		output = weighted(successful)
	default:
		output = merge(successful)
	}

	output[metadataKey] = meta

	return output
}

func (a *Aggregator) buildMetadata(all, successful []*runner.StageResult, strategy Strategy, wallClock time.Duration) map[string]any {
	sources := make([]map[string]any, 0, len(all))

	var bottleneck *runner.StageResult

	var sequentialSum time.Duration

	for _, r := range all {
		sources = append(sources, map[string]any{
			"agent_id":    r.AgentID,
			"agent_type":  r.AgentType,
			"success":     r.Success,
			"duration_ms": r.Duration().Milliseconds(),
		})

		sequentialSum += r.Duration()

		if bottleneck == nil || r.Duration() > bottleneck.Duration() {
			bottleneck = r
		}
	}

	meta := map[string]any{
		"strategy":   string(strategy),
		"total":      len(all),
		"successful": len(successful),
		"failed":     len(all) - len(successful),
		"sources":    sources,
	}

	if bottleneck != nil {
		meta["bottleneck"] = map[string]any{
			"agent_id":    bottleneck.AgentID,
			"duration_ms": bottleneck.Duration().Milliseconds(),
		}
	}

	if wallClock > 0 && sequentialSum > 0 {
		saved := float64(sequentialSum-wallClock) / float64(sequentialSum)
		meta["parallel_efficiency_percent"] = saved * 100
	}

	return meta
}

func passthrough(result *runner.StageResult) map[string]any {
	output := make(map[string]any, len(result.OutputData))
	for k, v := range result.OutputData {
		output[k] = v
	}

	return output
}
