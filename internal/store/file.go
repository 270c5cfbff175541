package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"furniture-catalog/internal/domain"
)

// FileStore keeps the collection as a JSON array in a single file.
// Saves go through a temp file and rename so readers never see a partial write.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) ([]domain.FurnitureItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.FurnitureItem{}, nil
		}
		return nil, persistenceErr("read "+s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.FurnitureItem{}, nil
	}

	var items []domain.FurnitureItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, corruptErr(s.path, err)
	}
	if items == nil {
		items = []domain.FurnitureItem{}
	}
	if err := checkCollection(s.path, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *FileStore) Save(_ context.Context, items []domain.FurnitureItem) error {
	if items == nil {
		items = []domain.FurnitureItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return persistenceErr("encode items", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistenceErr("create "+dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return persistenceErr("create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return persistenceErr("write "+tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return persistenceErr("sync "+tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return persistenceErr("close "+tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return persistenceErr(fmt.Sprintf("rename %s", tmpName), err)
	}
	return nil
}

func (s *FileStore) GenerateID() string { return NewID() }
