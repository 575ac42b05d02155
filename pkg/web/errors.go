package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
	"github.com/tradewind-io/tradewind/pkg/persistence"
	"github.com/tradewind-io/tradewind/pkg/workflow"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleExecutorError maps orchestrator and persistence errors to problem
// responses.
func handleExecutorError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, workflow.ErrStageNotFound),
		errors.Is(err, workflow.ErrInvalidDecisionConfig),
		errors.Is(err, workflow.ErrNoStages):
		return badRequest(c, err.Error())

	case errors.Is(err, workflow.ErrExecutionNotRunning):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("not_running").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, workflow.ErrExecutionNotFailed):
		return conflict(c, err.Error())

	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "workflow not found")

	case persistence.IsExecutionNotFound(err):
		return notFound(c, "execution not found")

	default:
		return internalError(c, err)
	}
}
