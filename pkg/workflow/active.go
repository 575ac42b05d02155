package workflow

import (
	"context"
	"sync"

	"github.com/tradewind-io/tradewind/pkg/models"
)

// activeExecution is the registry entry for one in-flight run.
type activeExecution struct {
	context *models.ExecutionContext
	cancel  context.CancelFunc
}

// activeRegistry tracks in-flight executions keyed by execution id. Entries
// are added when a run starts and removed when it terminates for any reason.
type activeRegistry struct {
	mu      sync.RWMutex
	entries map[string]*activeExecution
}

func newActiveRegistry() *activeRegistry {
	return &activeRegistry{entries: make(map[string]*activeExecution)}
}

func (r *activeRegistry) add(executionID string, entry *activeExecution) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[executionID] = entry
}

func (r *activeRegistry) remove(executionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, executionID)
}

func (r *activeRegistry) get(executionID string) (*activeExecution, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[executionID]

	return entry, ok
}

// setProgress records the stage index the run is currently at. Writes go
// through the registry lock so list snapshots stay consistent.
func (r *activeRegistry) setProgress(executionID string, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[executionID]; ok {
		entry.context.CurrentIndex = index
	}
}

func (r *activeRegistry) list() []*models.ExecutionContext {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contexts := make([]*models.ExecutionContext, 0, len(r.entries))
	for _, entry := range r.entries {
		snapshot := *entry.context

		contexts = append(contexts, &snapshot)
	}

	return contexts
}
