package participant

import (
	"context"
	"sort"
	"sync"

	"inscripciones/pkg/sentinel"
)

// InMemoryStore is a thread-safe in-memory Store for tests and local runs
// without a database.
type InMemoryStore struct {
	mu           sync.RWMutex
	participants map[string]Participant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{participants: make(map[string]Participant)}
}

func (s *InMemoryStore) Create(_ context.Context, p Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[p.ID]; exists {
		return sentinel.ErrConflict
	}
	s.participants[p.ID] = p
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[p.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.participants[p.ID] = p
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[id]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.participants, id)
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id string) (Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.participants[id]
	if !exists {
		return Participant{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *InMemoryStore) FindByCedula(_ context.Context, cedula string) (Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.participants {
		if p.Cedula == cedula {
			return p, nil
		}
	}
	return Participant{}, sentinel.ErrNotFound
}

// List returns all participants ordered by creation time, newest first, with
// ID as tiebreaker so the order is deterministic.
func (s *InMemoryStore) List(_ context.Context) ([]Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
