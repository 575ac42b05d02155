// Package web provides HTTP handlers and REST API endpoints for pipeline management.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/persistence"
	"github.com/tradewind-io/tradewind/pkg/registry"
	"github.com/tradewind-io/tradewind/pkg/workflow"
)

type APIHandlers struct {
	persistence persistence.Persistence
	executor    *workflow.Executor
	validator   *validator.Validate
	registry    *registry.Registry
}

func NewAPIHandlers(
	persist persistence.Persistence,
	executor *workflow.Executor,
	validate *validator.Validate,
	reg *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		persistence: persist,
		executor:    executor,
		validator:   validate,
		registry:    reg,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.persistence.WorkflowRepository().GetAll(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.persistence.WorkflowRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleExecutorError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	for _, stage := range req.Stages {
		if !stage.Category.Valid() {
			return badRequest(c, "unknown stage category: "+string(stage.Category))
		}
	}

	wf := &models.Workflow{
		Name:           req.Name,
		Description:    req.Description,
		Stages:         req.Stages,
		Settings:       req.Settings,
		DecisionConfig: req.DecisionConfig,
		Variables:      req.Variables,
		Owner:          req.Owner,
	}

	if err := h.persistence.WorkflowRepository().Save(c.Context(), wf); err != nil {
		return handleExecutorError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(wf)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.persistence.WorkflowRepository().Delete(c.Context(), id)
	if err != nil {
		return handleExecutorError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExecuteWorkflow starts a synchronous execution of the workflow and returns
// the terminal record. Stage failures under a skip strategy still produce a
// 200 with the completed record; configuration problems produce a 400.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	wf, err := h.persistence.WorkflowRepository().GetByID(c.Context(), id)
	if err != nil {
		return handleExecutorError(c, err)
	}

	options := models.ExecutionOptions{
		StartFromAgent: req.StartFromAgent,
		StopAtAgent:    req.StopAtAgent,
	}

	execution, err := h.executor.ExecuteWorkflow(c.Context(), wf, options, req.UserID)
	if err != nil && execution == nil {
		return handleExecutorError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	repo := h.persistence.ExecutionRepository()

	execution, err := repo.FindByID(c.Context(), id)
	if err != nil {
		return handleExecutorError(c, err)
	}

	results, err := repo.AgentResults(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	executionEvents, err := repo.Events(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(ExecutionResponse{
		Execution: execution,
		Results:   results,
		Events:    executionEvents,
	})
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	var req CancelExecutionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err := h.executor.CancelExecution(c.Context(), id, req.CancelledBy)
	if err != nil {
		return handleExecutorError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) RetryExecution(c fiber.Ctx) error {
	workflowID := c.Params("id")
	executionID := c.Params("executionId")

	if workflowID == "" || executionID == "" {
		return badRequest(c, "Workflow ID and execution ID are required")
	}

	var req RetryExecutionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	wf, err := h.persistence.WorkflowRepository().GetByID(c.Context(), workflowID)
	if err != nil {
		return handleExecutorError(c, err)
	}

	execution, err := h.executor.RetryExecution(c.Context(), wf, executionID, req.FromAgent, req.UserID)
	if err != nil && execution == nil {
		return handleExecutorError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetActiveExecutions(c fiber.Ctx) error {
	active := h.executor.GetActiveExecutions()

	return c.JSON(fiber.Map{
		"active":      active,
		"total_count": len(active),
	})
}

func (h *APIHandlers) GetAvailableAgents(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"agents": h.registry.AvailableAgents(),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryErr := h.persistence.HealthCheck(c.Context())

	status := "healthy"
	message := "Tradewind API is healthy"
	httpStatus := http.StatusOK

	if repositoryErr != nil {
		status = "unhealthy"
		message = "Tradewind API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryErr == nil,
			"agents":     len(h.registry.AvailableAgents()),
		},
		"timestamp": time.Now().UTC(),
	})
}
