// Package risk enforces per-user trading limits before gated stages run.
package risk

import (
	"context"
	"sync"
	"time"
)

// DateKeyLayout formats the UTC calendar day used for daily-loss resets.
const DateKeyLayout = "2006-01-02"

// UserRiskState is the mutable per-user risk accounting record. It is
// lazily created on first check and only ever reset, never destroyed.
type UserRiskState struct {
	UserID            string     `json:"user_id"`
	DailyLossPercent  float64    `json:"daily_loss_percent"`
	LastLossTimestamp *time.Time `json:"last_loss_timestamp,omitempty"`
	ActiveTrades      int        `json:"active_trades"`
	LastResetDate     string     `json:"last_reset_date"`
}

// Store persists per-user risk state. Implementations do not need to be
// safe for concurrent use; the Gate serializes access.
type Store interface {
	// Get returns the state for userID, or nil when none exists yet.
	Get(ctx context.Context, userID string) (*UserRiskState, error)

	// Save writes the state back.
	Save(ctx context.Context, state *UserRiskState) error

	// Users lists every user id with stored state.
	Users(ctx context.Context) ([]string, error)
}

// MemoryStore is the default in-process store.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*UserRiskState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*UserRiskState)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*UserRiskState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, nil
	}

	clone := *state

	return &clone, nil
}

func (s *MemoryStore) Save(_ context.Context, state *UserRiskState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *state
	s.states[state.UserID] = &clone

	return nil
}

func (s *MemoryStore) Users(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.states))
	for userID := range s.states {
		users = append(users, userID)
	}

	return users, nil
}
