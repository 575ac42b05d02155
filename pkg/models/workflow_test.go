package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedStages(t *testing.T) {
	workflow := &Workflow{
		Stages: []*StageNode{
			{ID: "c", Order: 2},
			{ID: "a", Order: 0},
			{ID: "b", Order: 1},
		},
	}

	sorted := workflow.SortedStages()

	assert.Equal(t, "a", sorted[0].ID)
	assert.Equal(t, "b", sorted[1].ID)
	assert.Equal(t, "c", sorted[2].ID)

	// The input slice keeps its declared order.
	assert.Equal(t, "c", workflow.Stages[0].ID)
}

func TestSortedStages_StableOnTies(t *testing.T) {
	workflow := &Workflow{
		Stages: []*StageNode{
			{ID: "m1", Order: 1},
			{ID: "m2", Order: 1},
			{ID: "m3", Order: 1},
		},
	}

	sorted := workflow.SortedStages()

	assert.Equal(t, "m1", sorted[0].ID)
	assert.Equal(t, "m2", sorted[1].ID)
	assert.Equal(t, "m3", sorted[2].ID)
}

func TestCategoryValid(t *testing.T) {
	for _, category := range []Category{
		CategoryCollect, CategoryProcess, CategoryPublish, CategoryValidate,
		CategoryMonitor, CategoryAnalyze, CategoryExecute, CategoryVerify,
	} {
		assert.True(t, category.Valid(), string(category))
	}

	assert.False(t, Category("trigger").Valid())
	assert.False(t, Category("").Valid())
}

func TestExecutionStatusTerminal(t *testing.T) {
	assert.True(t, ExecutionStatusCompleted.Terminal())
	assert.True(t, ExecutionStatusFailed.Terminal())
	assert.True(t, ExecutionStatusCancelled.Terminal())
	assert.False(t, ExecutionStatusRunning.Terminal())
}
