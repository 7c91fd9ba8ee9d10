package audit

import (
	"context"
	"sync"

	"fieldcheck/pkg/domain"
)

// MemoryStore keeps the audit trail in memory, per submission, oldest first.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[domain.SubmissionID][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[domain.SubmissionID][]Event)}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.SubmissionID] = append(s.events[event.SubmissionID], event)
	return nil
}

func (s *MemoryStore) List(_ context.Context, id domain.SubmissionID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[id]...), nil
}
