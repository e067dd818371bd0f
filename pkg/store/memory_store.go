package store

import (
	"sync"

	"reviewdesk/pkg/domain"
)

// MemoryStore keeps the collection in-process. Used by tests and ephemeral
// runs where durability does not matter.
type MemoryStore struct {
	mu      sync.RWMutex
	reviews []domain.Review
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reviews: []domain.Review{}}
}

// Load returns a copy of the collection in insertion order.
func (m *MemoryStore) Load() ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Review, len(m.reviews))
	copy(out, m.reviews)
	return out, nil
}

// Save replaces the collection.
func (m *MemoryStore) Save(reviews []domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = make([]domain.Review, len(reviews))
	copy(m.reviews, reviews)
	return nil
}
