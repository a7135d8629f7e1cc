package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"inscripciones/pkg/sentinel"
)

// ManualStore persists the session-scoped manual rate override. The override
// outlives individual requests but not the session: entries expire with the
// session TTL and are never shared between sessions.
type ManualStore interface {
	Get(ctx context.Context, sessionID string) (decimal.Decimal, error)
	Set(ctx context.Context, sessionID string, value decimal.Decimal) error
	Clear(ctx context.Context, sessionID string) error
}

// InMemoryManualStore keeps overrides in-process. Used when redis is not
// configured, and in tests.
type InMemoryManualStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]manualEntry
}

type manualEntry struct {
	value     decimal.Decimal
	expiresAt time.Time
}

func NewInMemoryManualStore(ttl time.Duration) *InMemoryManualStore {
	return &InMemoryManualStore{
		ttl:     ttl,
		entries: make(map[string]manualEntry),
	}
}

func (s *InMemoryManualStore) Get(_ context.Context, sessionID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[sessionID]
	if !ok || time.Now().After(entry.expiresAt) {
		return decimal.Zero, sentinel.ErrNotFound
	}
	return entry.value, nil
}

func (s *InMemoryManualStore) Set(_ context.Context, sessionID string, value decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = manualEntry{value: value, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *InMemoryManualStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
