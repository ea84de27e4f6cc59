package conversation

import (
	"context"
	"sync"

	"village-gate/pkg/platform/sentinel"
)

// InMemory keeps conversation state in process memory. State is lost on
// restart; parked applicants simply re-enter via the start command.
type InMemory struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewInMemory constructs an empty in-memory conversation store.
func NewInMemory() *InMemory {
	return &InMemory{states: make(map[int64]State)}
}

func (s *InMemory) Get(_ context.Context, id int64) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := state
	return &out, nil
}

func (s *InMemory) Set(_ context.Context, id int64, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = *state
	return nil
}

func (s *InMemory) Clear(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
	return nil
}
