package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"veridoc/pkg/platform/sentinel"
)

// InMemoryStore keeps session records in memory for tests and single-node dev
// runs. Expiry is enforced lazily at read time.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord

	now func() time.Time
}

type memoryRecord struct {
	rec       Record
	expiresAt time.Time
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

func (s *InMemoryStore) Save(_ context.Context, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SessionID] = memoryRecord{rec: rec, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, sessionID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.records[sessionID]
	if !ok || stored.expiresAt.Before(s.now()) {
		return Record{}, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
	}
	return stored.rec, nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}
