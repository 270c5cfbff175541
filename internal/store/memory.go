package store

import (
	"context"
	"sync"

	"furniture-catalog/internal/domain"
)

// MemoryStore keeps the collection in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu    sync.Mutex
	items []domain.FurnitureItem
}

// NewMemoryStore returns a store seeded with a copy of items.
func NewMemoryStore(items ...domain.FurnitureItem) *MemoryStore {
	return &MemoryStore{items: domain.CloneItems(items)}
}

func (s *MemoryStore) Load(_ context.Context) ([]domain.FurnitureItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.items), nil
}

func (s *MemoryStore) Save(_ context.Context, items []domain.FurnitureItem) error {
	if err := checkCollection("memory", items); err != nil {
		return &domain.PersistenceError{Op: "store: save", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = domain.CloneItems(items)
	return nil
}

func (s *MemoryStore) GenerateID() string { return NewID() }
