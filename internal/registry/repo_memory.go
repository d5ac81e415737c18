package registry

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory reputation repository for tests and early
// development. Upsert replaces whole entries, matching the atomicity the
// Postgres implementation gets from a single-statement upsert.
type MemoryRepo struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: map[string]Entry{}}
}

func (r *MemoryRepo) Get(ctx context.Context, phoneNumber string) (Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[phoneNumber]
	return e, ok, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.PhoneNumber] = e
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, phoneNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[phoneNumber]; !ok {
		return ErrNotFound
	}
	delete(r.entries, phoneNumber)
	return nil
}
