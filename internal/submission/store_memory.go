package submission

import (
	"context"
	"sync"
	"time"

	"fieldcheck/pkg/domain"
	"fieldcheck/pkg/platform/sentinel"
)

// MemoryStore keeps submissions in memory, newest-first. A single mutex
// covers both the ordered slice and the index, which also serializes
// transitions per id.
type MemoryStore struct {
	mu      sync.RWMutex
	ordered []Submission
	index   map[domain.SubmissionID]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[domain.SubmissionID]int)}
}

func (s *MemoryStore) Create(_ context.Context, sub Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[sub.ID]; exists {
		return sentinel.ErrConflict
	}
	s.ordered = append([]Submission{sub}, s.ordered...)
	s.reindex()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id domain.SubmissionID) (Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Submission{}, sentinel.ErrNotFound
	}
	return s.ordered[i], nil
}

func (s *MemoryStore) List(_ context.Context) ([]Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Submission{}, s.ordered...), nil
}

func (s *MemoryStore) ApplyTransition(_ context.Context, id domain.SubmissionID, target Status, reason string, now time.Time) (Submission, error) {
	if err := ValidateTarget(target); err != nil {
		return Submission{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Submission{}, sentinel.ErrNotFound
	}
	updated, err := Transition(s.ordered[i], target, reason, now)
	if err != nil {
		return Submission{}, err
	}
	s.ordered[i] = updated
	return updated, nil
}

// reindex rebuilds the id index after an insert at the head.
func (s *MemoryStore) reindex() {
	for i := range s.ordered {
		s.index[s.ordered[i].ID] = i
	}
}
