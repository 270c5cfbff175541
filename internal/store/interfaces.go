package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"furniture-catalog/internal/domain"
)

// ItemStore persists the whole furniture collection.
// Load returns an empty collection when nothing was saved yet and a
// *domain.CorruptDataError when stored data has the wrong shape.
// Save replaces the collection atomically; failures are *domain.PersistenceError.
type ItemStore interface {
	Load(ctx context.Context) ([]domain.FurnitureItem, error)
	Save(ctx context.Context, items []domain.FurnitureItem) error
	GenerateID() string
}

// Pinger is implemented by backends that hold a live connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewID returns a random identifier for a new item.
func NewID() string {
	return uuid.NewString()
}

func persistenceErr(op string, err error) error {
	return &domain.PersistenceError{Op: "store: " + op, Err: err}
}

func corruptErr(source string, err error) error {
	return &domain.CorruptDataError{Source: source, Err: err}
}

// checkCollection rejects collections that break the id invariants.
func checkCollection(source string, items []domain.FurnitureItem) error {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it.ID == "" {
			return corruptErr(source, fmt.Errorf("item at position %d has no id", i))
		}
		if _, dup := seen[it.ID]; dup {
			return corruptErr(source, fmt.Errorf("duplicate item id %q", it.ID))
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}
