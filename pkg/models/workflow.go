// Package models defines the core domain models for staged pipeline orchestration.
package models

import (
	"sort"
	"time"
)

// Category represents the processing category of a pipeline stage.
type Category string

const (
	CategoryCollect  Category = "collect"  // Originates data, receives empty input
	CategoryProcess  Category = "process"  // Transforms upstream output
	CategoryPublish  Category = "publish"  // Delivers data to external sinks
	CategoryValidate Category = "validate" // Checks data quality
	CategoryMonitor  Category = "monitor"  // Observes markets; contiguous runs execute in parallel
	CategoryAnalyze  Category = "analyze"  // Produces trade signals consumed by the gate
	CategoryExecute  Category = "execute"  // Gated trade execution
	CategoryVerify   Category = "verify"   // Confirms trade outcome, feeds risk accounting
)

// Valid reports whether the category is one of the known values. Workflows
// are rejected at load time when any stage carries an unknown category.
func (c Category) Valid() bool {
	switch c {
	case CategoryCollect, CategoryProcess, CategoryPublish, CategoryValidate,
		CategoryMonitor, CategoryAnalyze, CategoryExecute, CategoryVerify:
		return true
	}

	return false
}

// ErrorStrategy controls how the executor reacts to a failing stage.
type ErrorStrategy string

const (
	ErrorStrategyStop     ErrorStrategy = "stop"     // Abort the whole execution
	ErrorStrategySkip     ErrorStrategy = "skip"     // Record the failure and move on
	ErrorStrategyContinue ErrorStrategy = "continue" // Same as skip, kept distinct for history
)

// StageNode is one unit of work in a workflow.
type StageNode struct {
	ID        string         `json:"id"         validate:"required"`
	AgentType string         `json:"agent_type" validate:"required"`
	Category  Category       `json:"category"   validate:"required"`
	Name      string         `json:"name"`
	Order     int            `json:"order"`
	Config    map[string]any `json:"config"`
}

// ErrorHandling wraps the failure policy for a workflow.
type ErrorHandling struct {
	Strategy ErrorStrategy `json:"strategy"`
}

// Settings holds workflow-level execution settings.
type Settings struct {
	ExecutionTimeoutSeconds int                `json:"execution_timeout_seconds"`
	ErrorHandling           ErrorHandling      `json:"error_handling"`
	RiskControls            *RiskControlConfig `json:"risk_controls,omitempty"`
}

// Workflow is an immutable pipeline definition: an ordered list of stages
// plus execution settings and an optional decision gate configuration.
type Workflow struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"        validate:"required,min=3"`
	Description    string          `json:"description"`
	Stages         []*StageNode    `json:"stages"      validate:"required,dive"`
	Settings       Settings        `json:"settings"`
	DecisionConfig *DecisionConfig `json:"decision_config,omitempty"`
	Variables      map[string]any  `json:"variables,omitempty"`
	Owner          string          `json:"owner"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
}

// SortedStages returns the stages in ascending Order. The input slice is not
// mutated; ties keep their declared relative position so contiguous monitor
// groups stay contiguous.
func (w *Workflow) SortedStages() []*StageNode {
	stages := make([]*StageNode, len(w.Stages))
	copy(stages, w.Stages)

	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})

	return stages
}

// StageByID returns the stage with the given id, or nil.
func (w *Workflow) StageByID(id string) *StageNode {
	for _, stage := range w.Stages {
		if stage.ID == id {
			return stage
		}
	}

	return nil
}
