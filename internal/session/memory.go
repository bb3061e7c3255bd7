package session

import (
	"context"
	"sync"

	"github.com/CiroGamboa/bimoi/internal/flow"
)

// MemoryStore is the in-process Store. State does not survive restarts; use
// the Redis store when that matters.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]flow.StepState
	locks  map[string]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]flow.StepState),
		locks:  make(map[string]*sync.Mutex),
	}
}

// Get returns the stored state, or the zero state for an unknown key.
func (s *MemoryStore) Get(_ context.Context, key string) (flow.StepState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[key]
	if !ok {
		return flow.StepState{}, nil
	}
	slots := make(map[string]string, len(state.Slots))
	for k, v := range state.Slots {
		slots[k] = v
	}
	return flow.StepState{State: state.State, Slots: slots}, nil
}

// Put stores the state for key.
func (s *MemoryStore) Put(_ context.Context, key string, state flow.StepState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := make(map[string]string, len(state.Slots))
	for k, v := range state.Slots {
		slots[k] = v
	}
	s.states[key] = flow.StepState{State: state.State, Slots: slots}
	return nil
}

// Lock acquires the per-conversation mutex.
func (s *MemoryStore) Lock(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
