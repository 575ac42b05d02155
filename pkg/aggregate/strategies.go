package aggregate

import (
	"sort"

	"github.com/tradewind-io/tradewind/pkg/runner"
)

// average emits the arithmetic mean for every numeric field present across
// the successful outputs, plus <field>_min, <field>_max and <field>_count.
func average(results []*runner.StageResult) map[string]any {
	type acc struct {
		sum   float64
		min   float64
		max   float64
		count int
	}

	fields := make(map[string]*acc)

	for _, r := range results {
		for key, value := range r.OutputData {
			number, ok := toFloat(value)
			if !ok {
				continue
			}

			entry, exists := fields[key]
			if !exists {
				fields[key] = &acc{sum: number, min: number, max: number, count: 1}

				continue
			}

			entry.sum += number
			entry.count++

			if number < entry.min {
				entry.min = number
			}

			if number > entry.max {
				entry.max = number
			}
		}
	}

	output := make(map[string]any, len(fields)*4)

	for key, entry := range fields {
		output[key] = entry.sum / float64(entry.count)
		output[key+"_min"] = entry.min
		output[key+"_max"] = entry.max
		output[key+"_count"] = entry.count
	}

	return output
}

// weighted emits a per-field weighted sum where faster stages weigh more:
// weight = (maxDuration - duration + 1) / maxDuration, normalized to sum
// to one across the group.
func weighted(results []*runner.StageResult) map[string]any {
	maxDuration := int64(0)

	for _, r := range results {
		if d := r.Duration().Milliseconds(); d > maxDuration {
			maxDuration = d
		}
	}

	if maxDuration == 0 {
		maxDuration = 1
	}

	weights := make([]float64, len(results))

	var total float64

	for i, r := range results {
		weights[i] = float64(maxDuration-r.Duration().Milliseconds()+1) / float64(maxDuration)
		total += weights[i]
	}

	for i := range weights {
		weights[i] /= total
	}

	output := make(map[string]any)

	for i, r := range results {
		for key, value := range r.OutputData {
			number, ok := toFloat(value)
			if !ok {
				continue
			}

			current, _ := output[key].(float64)
			output[key] = current + number*weights[i]
		}
	}

	return output
}

// merge unions all outputs under a per-agent namespace and hoists
// non-conflicting top-level keys. Numeric keys that collide across agents
// are collected into an array instead of overwritten.
func merge(results []*runner.StageResult) map[string]any {
	output := make(map[string]any, len(results))
	occurrences := make(map[string][]any)

	for _, r := range results {
		namespaced := make(map[string]any, len(r.OutputData))

		for key, value := range r.OutputData {
			namespaced[key] = value
			occurrences[key] = append(occurrences[key], value)
		}

		output[r.AgentID] = namespaced
	}

	keys := make([]string, 0, len(occurrences))
	for key := range occurrences {
		keys = append(keys, key)
	}

	// Deterministic hoisting order.
	sort.Strings(keys)

	for _, key := range keys {
		values := occurrences[key]

		if len(values) == 1 {
			if _, taken := output[key]; !taken {
				output[key] = values[0]
			}

			continue
		}

		if _, taken := output[key]; taken {
			continue
		}

		if allNumeric(values) {
			output[key] = values
		}
	}

	return output
}

func allNumeric(values []any) bool {
	for _, v := range values {
		if _, ok := toFloat(v); !ok {
			return false
		}
	}

	return true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	return 0, false
}
