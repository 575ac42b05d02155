// Package httpcollect provides an HTTP data-collection agent for pipeline stages.
package httpcollect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tradewind-io/tradewind/pkg/protocol"
)

const defaultTimeoutSeconds = 30

func NewAgentFactory() *AgentFactory {
	return &AgentFactory{}
}

type AgentFactory struct{}

func (f *AgentFactory) ID() string {
	return "http_collect"
}

func (f *AgentFactory) Name() string {
	return "HTTP Collect"
}

func (f *AgentFactory) Description() string {
	return "Fetches JSON data from an HTTP endpoint. Collect-category stages originate pipeline data, so the upstream input is ignored."
}

func (f *AgentFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Endpoint to fetch. Response must be a JSON object.",
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method, defaults to GET.",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Request headers.",
			},
			"retry_attempts": map[string]any{
				"type":        "number",
				"description": "Number of attempts before giving up. Defaults to 1.",
			},
		},
		"required": []any{"url"},
	}
}

func (f *AgentFactory) Create(config map[string]any) (protocol.Agent, error) {
	return NewAgent(config)
}

// Agent performs an HTTP request and returns the decoded JSON body.
type Agent struct {
	URL      string
	Method   string
	Headers  map[string]string
	Attempts int
	Timeout  time.Duration

	requests atomic.Int64
	retries  atomic.Int64
	client   *http.Client
}

func NewAgent(config map[string]any) (*Agent, error) {
	url, ok := config["url"].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("missing or invalid 'url' in configuration")
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	headers := make(map[string]string)

	if headersConfig, exists := config["headers"]; exists {
		if headersMap, ok := headersConfig.(map[string]any); ok {
			for k, v := range headersMap {
				if strVal, ok := v.(string); ok {
					headers[k] = strVal
				}
			}
		}
	}

	attempts := 1
	if v, ok := config["retry_attempts"].(float64); ok && v >= 1 {
		attempts = int(v)
	}

	return &Agent{
		URL:      url,
		Method:   strings.ToUpper(method),
		Headers:  headers,
		Attempts: attempts,
		Timeout:  defaultTimeoutSeconds * time.Second,
		client:   &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
	}, nil
}

func (a *Agent) Execute(ctx context.Context, input map[string]any, logger *slog.Logger) (map[string]any, error) {
	logger = logger.With("module", "http_collect_agent")
	logger.InfoContext(ctx, "Executing HTTP collect", "url", a.URL, "method", a.Method)

	var lastErr error

	for attempt := 1; attempt <= a.Attempts; attempt++ {
		if attempt > 1 {
			a.retries.Add(1)
			logger.InfoContext(ctx, "Retrying HTTP collect", "attempt", attempt, "max", a.Attempts)
		}

		output, err := a.fetch(ctx)
		if err == nil {
			return output, nil
		}

		lastErr = err
	}

	return nil, fmt.Errorf("http collect failed after %d attempts: %w", a.Attempts, lastErr)
}

func (a *Agent) fetch(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, a.Method, a.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	a.requests.Add(1)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, a.URL)
	}

	output := map[string]any{}

	err = json.Unmarshal(body, &output)
	if err != nil {
		// Non-object payloads are wrapped so downstream stages always
		// receive a map.
		var anyBody any
		if jsonErr := json.Unmarshal(body, &anyBody); jsonErr == nil {
			return map[string]any{"data": anyBody}, nil
		}

		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return output, nil
}

func (a *Agent) Cleanup(_ context.Context) error {
	a.client.CloseIdleConnections()

	return nil
}

func (a *Agent) Metrics() map[string]any {
	return map[string]any{
		"requests": a.requests.Load(),
		"retries":  a.retries.Load(),
	}
}
