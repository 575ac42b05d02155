package runner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradewind-io/tradewind/pkg/models"
	"github.com/tradewind-io/tradewind/pkg/registry"
	"github.com/tradewind-io/tradewind/pkg/testutil"
)

func newTestRunner(factories ...*testutil.FakeAgentFactory) *Runner {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	reg := registry.NewRegistry(logger)

	for _, factory := range factories {
		reg.RegisterAgent(factory)
	}

	return NewRunner(reg, logger)
}

func TestRun_Success(t *testing.T) {
	factory := testutil.NewFakeAgentFactory("fetch").WithOutput(map[string]any{"price": 42.0})
	r := newTestRunner(factory)

	stage := testutil.Stage("stage-1", "fetch", models.CategoryCollect, 0)

	result := r.Run(context.Background(), stage, map[string]any{}, time.Second)

	assert.True(t, result.Success)
	assert.Equal(t, 42.0, result.OutputData["price"])
	assert.Equal(t, "stage-1", result.AgentID)
	assert.Positive(t, result.Duration())
	assert.Equal(t, int64(1), factory.ExecutionCount())
}

func TestRun_AgentError(t *testing.T) {
	factory := testutil.NewFakeAgentFactory("fetch").WithError(errors.New("upstream down"))
	r := newTestRunner(factory)

	stage := testutil.Stage("stage-1", "fetch", models.CategoryCollect, 0)

	result := r.Run(context.Background(), stage, map[string]any{}, time.Second)

	assert.False(t, result.Success)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "upstream down")
}

func TestRun_Timeout(t *testing.T) {
	factory := testutil.NewFakeAgentFactory("slow").WithDelay(time.Second)
	r := newTestRunner(factory)

	stage := testutil.Stage("stage-1", "slow", models.CategoryCollect, 0)

	start := time.Now()
	result := r.Run(context.Background(), stage, map[string]any{}, 50*time.Millisecond)

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, ErrStageTimeout)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRun_CleanupAlwaysRuns(t *testing.T) {
	factory := testutil.NewFakeAgentFactory("slow").WithDelay(100 * time.Millisecond)
	r := newTestRunner(factory)

	stage := testutil.Stage("stage-1", "slow", models.CategoryCollect, 0)

	result := r.Run(context.Background(), stage, map[string]any{}, 10*time.Millisecond)
	assert.False(t, result.Success)

	// The abandoned goroutine still settles and cleans up.
	assert.Eventually(t, func() bool {
		return factory.CleanupCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRun_ParentCancellation(t *testing.T) {
	factory := testutil.NewFakeAgentFactory("slow").WithDelay(time.Second)
	r := newTestRunner(factory)

	stage := testutil.Stage("stage-1", "slow", models.CategoryCollect, 0)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result := r.Run(ctx, stage, map[string]any{}, 10*time.Second)

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, context.Canceled)
}

func TestRun_UnknownAgentType(t *testing.T) {
	r := newTestRunner()

	stage := testutil.Stage("stage-1", "missing", models.CategoryCollect, 0)

	result := r.Run(context.Background(), stage, map[string]any{}, time.Second)

	assert.False(t, result.Success)
	assert.Contains(t, result.Err.Error(), "not registered")
}
