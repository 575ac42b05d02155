package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradewind-io/tradewind/pkg/agents/transform"
	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/persistence/file"
	"github.com/tradewind-io/tradewind/pkg/registry"
	"github.com/tradewind-io/tradewind/pkg/web"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	persist := file.NewPersistence(t.TempDir())
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterAgent(transform.NewAgentFactory())

	api, err := NewAPI(slog.Default(), persist, reg, nil, "")
	require.NoError(t, err)

	return api.App()
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()

	err := resp.Body.Close()
	if err != nil {
		t.Logf("Failed to close response body: %v", err)
	}
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Tradewind API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any

	err = json.NewDecoder(resp.Body).Decode(&payload)
	require.NoError(t, err)
	assert.Equal(t, "healthy", payload["status"])
}

func TestAPI_GetWorkflows_Empty(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/workflows", nil)
	req.Header.Set("Accept", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Workflows  []models.Workflow `json:"workflows"`
		TotalCount int               `json:"total_count"`
	}

	err = json.NewDecoder(resp.Body).Decode(&payload)
	require.NoError(t, err)
	assert.Empty(t, payload.Workflows)
	assert.Zero(t, payload.TotalCount)
}

func TestAPI_CreateAndFetchWorkflow(t *testing.T) {
	app := setupTestApp(t)

	createReq := web.CreateWorkflowRequest{
		Name:        "Momentum pipeline",
		Description: "Created through the API",
		Owner:       "test-user",
		Stages: []*models.StageNode{
			{
				ID:        "s1",
				AgentType: "transform",
				Category:  models.CategoryProcess,
				Config:    map[string]any{"mapping": map[string]any{"price": "ticker.last"}},
				Order:     0,
			},
		},
	}

	body, err := json.Marshal(createReq)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	err = json.NewDecoder(resp.Body).Decode(&created)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Momentum pipeline", created.Name)

	getReq := httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil)
	getResp, err := app.Test(getReq)
	require.NoError(t, err)

	defer closeBody(t, getResp)

	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestAPI_CreateWorkflow_ValidationFailures(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name string
		body web.CreateWorkflowRequest
	}{
		{
			name: "missing owner",
			body: web.CreateWorkflowRequest{
				Name: "No owner",
				Stages: []*models.StageNode{
					{ID: "s1", AgentType: "transform", Category: models.CategoryProcess},
				},
			},
		},
		{
			name: "no stages",
			body: web.CreateWorkflowRequest{
				Name:  "No stages",
				Owner: "test-user",
			},
		},
		{
			name: "unknown category",
			body: web.CreateWorkflowRequest{
				Name:  "Bad category",
				Owner: "test-user",
				Stages: []*models.StageNode{
					{ID: "s1", AgentType: "transform", Category: "trigger"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.body)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer closeBody(t, resp)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAPI_GetWorkflow_NotFound(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/workflows/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_DeleteWorkflow(t *testing.T) {
	app := setupTestApp(t)

	createReq := web.CreateWorkflowRequest{
		Name:  "To delete",
		Owner: "test-user",
		Stages: []*models.StageNode{
			{ID: "s1", AgentType: "transform", Category: models.CategoryProcess, Config: map[string]any{"mapping": map[string]any{"price": "ticker.last"}}},
		},
	}

	body, err := json.Marshal(createReq)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	var created models.Workflow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	delReq := httptest.NewRequest(http.MethodDelete, "/workflows/"+created.ID, nil)
	delResp, err := app.Test(delReq)
	require.NoError(t, err)

	defer closeBody(t, delResp)

	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	getReq := httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil)
	getResp, err := app.Test(getReq)
	require.NoError(t, err)

	defer closeBody(t, getResp)

	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestAPI_ExecuteWorkflow(t *testing.T) {
	app := setupTestApp(t)

	createReq := web.CreateWorkflowRequest{
		Name:  "Executable",
		Owner: "test-user",
		Stages: []*models.StageNode{
			{
				ID:        "s1",
				AgentType: "transform",
				Category:  models.CategoryProcess,
				Config:    map[string]any{"mapping": map[string]any{"price": "ticker.last"}},
				Order:     0,
			},
		},
	}

	body, err := json.Marshal(createReq)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	var created models.Workflow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	execBody, err := json.Marshal(web.ExecuteWorkflowRequest{UserID: "test-user"})
	require.NoError(t, err)

	execReq := httptest.NewRequest(http.MethodPost, "/workflows/"+created.ID+"/execute", bytes.NewReader(execBody))
	execReq.Header.Set("Content-Type", "application/json")

	execResp, err := app.Test(execReq)
	require.NoError(t, err)

	defer closeBody(t, execResp)

	assert.Equal(t, http.StatusOK, execResp.StatusCode)

	var execution models.WorkflowExecution
	require.NoError(t, json.NewDecoder(execResp.Body).Decode(&execution))
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.NotEmpty(t, execution.ID)

	detailReq := httptest.NewRequest(http.MethodGet, "/executions/"+execution.ID, nil)
	detailResp, err := app.Test(detailReq)
	require.NoError(t, err)

	defer closeBody(t, detailResp)

	assert.Equal(t, http.StatusOK, detailResp.StatusCode)

	var detail web.ExecutionResponse
	require.NoError(t, json.NewDecoder(detailResp.Body).Decode(&detail))
	require.NotNil(t, detail.Execution)
	assert.Len(t, detail.Results, 1)
}

func TestAPI_CancelExecution_NotRunning(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/executions/exec-missing/cancel", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_GetActiveExecutions_Empty(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/executions/active", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Active     []any `json:"active"`
		TotalCount int   `json:"total_count"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Empty(t, payload.Active)
}

func TestAPI_GetAvailableAgents(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/agents", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Agents []string `json:"agents"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Contains(t, payload.Agents, "transform")
}
