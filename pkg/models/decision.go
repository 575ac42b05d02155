package models

// RuleOperator is the comparison applied by a single decision rule.
type RuleOperator string

const (
	OperatorGT      RuleOperator = "gt"
	OperatorGTE     RuleOperator = "gte"
	OperatorLT      RuleOperator = "lt"
	OperatorLTE     RuleOperator = "lte"
	OperatorEQ      RuleOperator = "eq"
	OperatorNE      RuleOperator = "ne"
	OperatorBetween RuleOperator = "between"
)

// CombineOperator joins the per-rule verdicts into one decision.
type CombineOperator string

const (
	CombineAnd CombineOperator = "and"
	CombineOr  CombineOperator = "or"
)

// DecisionRule compares one field of the analyze output against a value.
// Field is a dot-separated path with optional array indexing, e.g.
// "signals[0].confidence". Value is a scalar, or a [min, max] pair for the
// between operator.
type DecisionRule struct {
	Field    string       `json:"field"    validate:"required"`
	Operator RuleOperator `json:"operator" validate:"required"`
	Value    any          `json:"value"`
}

// DecisionConfig is the rule set gating execute-category stages.
//
// Rules and Expression are alternative modes: when Expression is set it is
// evaluated as an expr-lang program against the analyze output and Rules are
// ignored.
type DecisionConfig struct {
	Rules      []DecisionRule  `json:"rules"`
	Operator   CombineOperator `json:"operator"`
	Expression string          `json:"expression,omitempty"`
}
