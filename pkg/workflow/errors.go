package workflow

import "errors"

// Configuration errors fail the call immediately and are never retried.
var (
	ErrStageNotFound         = errors.New("stage not found in workflow")
	ErrInvalidDecisionConfig = errors.New("invalid decision config")
	ErrNoStages              = errors.New("workflow has no stages")
)

// Entry-point validation errors for cancel and retry.
var (
	ErrExecutionNotRunning = errors.New("execution is not running")
	ErrExecutionNotFailed  = errors.New("execution is not in failed status")
)
