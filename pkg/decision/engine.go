// Package decision evaluates rule-based gate conditions against stage output data.
package decision

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/tradewind-io/tradewind/pkg/models"
)

// ErrUnknownOperator indicates a rule carries an operator the engine does
// not implement.
var ErrUnknownOperator = errors.New("unknown rule operator")

// ErrInvalidConfig indicates the config failed validation; see
// ValidateConfig for the individual messages.
var ErrInvalidConfig = errors.New("invalid decision config")

// Tolerance for eq/ne comparisons between floating point values.
const epsilon = 1e-9

// RuleResult is the verdict for a single rule.
type RuleResult struct {
	Field    string             `json:"field"`
	Operator models.RuleOperator `json:"operator"`
	Expected any                `json:"expected"`
	Actual   any                `json:"actual,omitempty"`
	Passed   bool               `json:"passed"`
	Reason   string             `json:"reason,omitempty"`
}

// Result is the combined verdict for a decision config.
type Result struct {
	Passed      bool         `json:"passed"`
	RuleResults []RuleResult `json:"rule_results,omitempty"`
	Expression  string       `json:"expression,omitempty"`
	DurationMs  int64        `json:"duration_ms"`
}

type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Evaluate runs every rule against data and combines the verdicts with the
// config's and/or operator. When the config carries an expression instead of
// rules, the expression is compiled and evaluated against data.
func (e *Engine) Evaluate(config *models.DecisionConfig, data map[string]any) (*Result, error) {
	start := time.Now()

	if config.Expression != "" {
		passed, err := e.evaluateExpression(config.Expression, data)
		if err != nil {
			return nil, err
		}

		return &Result{
			Passed:     passed,
			Expression: config.Expression,
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	results := make([]RuleResult, 0, len(config.Rules))

	for _, rule := range config.Rules {
		result, err := e.evaluateRule(rule, data)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	passed := combine(config.Operator, results)

	e.logger.Debug("Decision evaluated",
		"passed", passed,
		"rules", len(results),
		"operator", config.Operator,
	)

	return &Result{
		Passed:      passed,
		RuleResults: results,
		DurationMs:  time.Since(start).Milliseconds(),
	}, nil
}

func combine(op models.CombineOperator, results []RuleResult) bool {
	if op == models.CombineOr {
		for _, r := range results {
			if r.Passed {
				return true
			}
		}

		return false
	}

	// "and" is the default combinator.
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}

	return true
}

func (e *Engine) evaluateRule(rule models.DecisionRule, data map[string]any) (RuleResult, error) {
	result := RuleResult{
		Field:    rule.Field,
		Operator: rule.Operator,
		Expected: rule.Value,
	}

	actual, found := ResolvePath(data, rule.Field)
	result.Actual = actual

	if !found {
		// A missing field satisfies "not equal to anything non-null";
		// every other operator fails on absent data.
		if rule.Operator == models.OperatorNE {
			result.Passed = rule.Value != nil
			return result, nil
		}

		result.Reason = "field not present in data"

		return result, nil
	}

	switch rule.Operator {
	case models.OperatorGT, models.OperatorGTE, models.OperatorLT, models.OperatorLTE:
		passed, err := compareNumeric(rule.Operator, actual, rule.Value)
		if err != nil {
			result.Reason = err.Error()
			return result, nil
		}

		result.Passed = passed

	case models.OperatorEQ:
		result.Passed = looseEqual(actual, rule.Value)

	case models.OperatorNE:
		result.Passed = !looseEqual(actual, rule.Value)

	case models.OperatorBetween:
		passed, err := evaluateBetween(actual, rule.Value)
		if err != nil {
			result.Reason = err.Error()
			return result, nil
		}

		result.Passed = passed

	default:
		return result, fmt.Errorf("%w: %q", ErrUnknownOperator, rule.Operator)
	}

	return result, nil
}

func compareNumeric(op models.RuleOperator, actual, expected any) (bool, error) {
	a, ok := toNumber(actual)
	if !ok {
		return false, fmt.Errorf("actual value %v is not numeric", actual)
	}

	b, ok := toNumber(expected)
	if !ok {
		return false, fmt.Errorf("expected value %v is not numeric", expected)
	}

	switch op {
	case models.OperatorGT:
		return a > b, nil
	case models.OperatorGTE:
		return a >= b, nil
	case models.OperatorLT:
		return a < b, nil
	case models.OperatorLTE:
		return a <= b, nil
	}

	return false, nil
}

func evaluateBetween(actual, bounds any) (bool, error) {
	pair, ok := bounds.([]any)
	if !ok || len(pair) != 2 {
		if floats, isFloats := bounds.([]float64); isFloats && len(floats) == 2 {
			pair = []any{floats[0], floats[1]}
		} else {
			return false, fmt.Errorf("between value must be a [min, max] pair, got %v", bounds)
		}
	}

	a, ok := toNumber(actual)
	if !ok {
		return false, fmt.Errorf("actual value %v is not numeric", actual)
	}

	minValue, ok := toNumber(pair[0])
	if !ok {
		return false, fmt.Errorf("between min %v is not numeric", pair[0])
	}

	maxValue, ok := toNumber(pair[1])
	if !ok {
		return false, fmt.Errorf("between max %v is not numeric", pair[1])
	}

	return a >= minValue && a <= maxValue, nil
}

// looseEqual compares numerically with epsilon tolerance when both sides
// coerce to numbers, and falls back to exact equality otherwise.
func looseEqual(actual, expected any) bool {
	a, aOK := toNumber(actual)
	b, bOK := toNumber(expected)

	if aOK && bOK {
		return math.Abs(a-b) < epsilon
	}

	return actual == expected
}

func toNumber(value any) (float64, bool) {
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
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}

		return f, true
	}

	return 0, false
}

// ValidateConfig returns human-readable problems with the config without
// evaluating it. Callers must reject invalid configs before execution.
func (e *Engine) ValidateConfig(config *models.DecisionConfig) []string {
	var problems []string

	if config == nil {
		return []string{"decision config is nil"}
	}

	if config.Expression != "" {
		if err := e.validateExpression(config.Expression); err != nil {
			problems = append(problems, fmt.Sprintf("invalid expression: %v", err))
		}

		return problems
	}

	if len(config.Rules) == 0 {
		problems = append(problems, "decision config has no rules")
	}

	if config.Operator != "" && config.Operator != models.CombineAnd && config.Operator != models.CombineOr {
		problems = append(problems, fmt.Sprintf("unrecognized combine operator %q", config.Operator))
	}

	for i, rule := range config.Rules {
		if rule.Field == "" {
			problems = append(problems, fmt.Sprintf("rule %d: missing field", i))
		}

		switch rule.Operator {
		case models.OperatorGT, models.OperatorGTE, models.OperatorLT, models.OperatorLTE,
			models.OperatorEQ, models.OperatorNE:
			if rule.Value == nil {
				problems = append(problems, fmt.Sprintf("rule %d: missing value", i))
			}
		case models.OperatorBetween:
			pair, ok := rule.Value.([]any)
			if !ok || len(pair) != 2 {
				if floats, isFloats := rule.Value.([]float64); !isFloats || len(floats) != 2 {
					problems = append(problems, fmt.Sprintf("rule %d: between value must be a [min, max] pair", i))
				}
			}
		default:
			problems = append(problems, fmt.Sprintf("rule %d: unrecognized operator %q", i, rule.Operator))
		}
	}

	return problems
}
