package records

import (
	"context"
	"sync"
)

// Store persists record references per patient, preserving insertion order.
type Store interface {
	Append(ctx context.Context, ref *Reference) error
	List(ctx context.Context, patientID string) ([]Reference, error)
}

// MemStore is the in-process Store.
type MemStore struct {
	mu   sync.RWMutex
	refs map[string][]Reference
}

// NewMemStore creates an empty in-memory record reference store.
func NewMemStore() *MemStore {
	return &MemStore{refs: make(map[string][]Reference)}
}

func (s *MemStore) Append(_ context.Context, ref *Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[ref.PatientID] = append(s.refs[ref.PatientID], *ref)
	return nil
}

func (s *MemStore) List(_ context.Context, patientID string) ([]Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := s.refs[patientID]
	out := make([]Reference, len(refs))
	copy(out, refs)
	return out, nil
}
