package audit

import (
	"context"
	"slices"
	"sync"
)

// InMemoryStore keeps the trail in memory. Fine for local runs; a durable
// sink can replace it behind the same interface.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByParticipant(_ context.Context, participantID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.ParticipantID == participantID {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns a copy of every recorded event, oldest first.
func (s *InMemoryStore) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}
