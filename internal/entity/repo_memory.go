package entity

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory repository useful for tests.
// It enforces the same optimistic version check as the Postgres repository.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[string]Workflowable
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]Workflowable)}
}

func key(t Type, id string) string { return string(t) + "/" + id }

func (r *MemoryRepo) Load(ctx context.Context, t Type, id string) (Workflowable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.records[key(t, id)]
	if !ok {
		return nil, ErrNotFound
	}
	return w.Clone(), nil
}

func (r *MemoryRepo) Create(ctx context.Context, w Workflowable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(w.EntityType(), w.EntityID())
	if _, ok := r.records[k]; ok {
		return ErrAlreadyExists
	}
	r.records[k] = w.Clone()
	return nil
}

func (r *MemoryRepo) Save(ctx context.Context, w Workflowable, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(w.EntityType(), w.EntityID())
	cur, ok := r.records[k]
	if !ok {
		return ErrNotFound
	}
	if cur.Version() != expectedVersion {
		return ErrVersionConflict
	}
	r.records[k] = w.Clone()
	return nil
}
