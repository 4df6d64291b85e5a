package session

import (
	"context"
	"sync"
)

// Store keeps dialogue state per Telegram user. Get never fails and returns Idle for unknown users.
type Store interface {
	Get(ctx context.Context, userID int64) State
	Set(ctx context.Context, userID int64, state State)
	Clear(ctx context.Context, userID int64)
}

// MemoryStore manages the states of all users in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	states map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

// Get returns the user's state or Idle.
func (s *MemoryStore) Get(_ context.Context, userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[userID]
	if !ok {
		return Idle{}
	}
	return state
}

// Set replaces the user's state. Setting Idle is the same as Clear.
func (s *MemoryStore) Set(ctx context.Context, userID int64, state State) {
	if _, idle := state.(Idle); idle || state == nil {
		s.Clear(ctx, userID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = state
}

// Clear drops all scratch state of the user.
func (s *MemoryStore) Clear(_ context.Context, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, userID)
}

// Len reports how many users have a flow in progress.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.states)
}
