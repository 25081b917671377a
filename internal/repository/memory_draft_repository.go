package repository

import (
	"context"
	"sync"

	appErrors "github.com/noah-isme/enroll-wizard-api/pkg/errors"
)

// MemoryDraftRepository keeps drafts in process memory. Used when no durable
// backend is configured and in tests.
type MemoryDraftRepository struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryDraftRepository constructs an empty in-memory repository.
func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{items: make(map[string][]byte)}
}

// Load returns a copy of the stored bytes for key.
func (r *MemoryDraftRepository) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.items[key]
	if !ok {
		return nil, appErrors.ErrDraftNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data under key.
func (r *MemoryDraftRepository) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key.
func (r *MemoryDraftRepository) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, key)
	return nil
}

// Len reports how many drafts are stored.
func (r *MemoryDraftRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
