package identity

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrPatientExists   = errors.New("patient already registered")
)

// Repository stores patient profiles.
type Repository interface {
	Insert(ctx context.Context, p *Patient) error
	Get(ctx context.Context, id string) (*Patient, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]Patient, error)
}

// MemRepository is the in-process Repository.
type MemRepository struct {
	mu       sync.RWMutex
	patients map[string]*Patient
}

// NewMemRepository creates an empty in-memory patient repository.
func NewMemRepository() *MemRepository {
	return &MemRepository{patients: make(map[string]*Patient)}
}

func (r *MemRepository) Insert(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.patients[p.ID]; exists {
		return ErrPatientExists
	}
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *MemRepository) Get(_ context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.patients[id]
	if !exists {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.patients[id]
	return exists, nil
}

func (r *MemRepository) List(_ context.Context) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
