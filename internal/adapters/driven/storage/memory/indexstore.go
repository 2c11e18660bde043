// Package memory provides in-process implementations of the storage ports.
// They back tests and the ephemeral MCP session table.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
// Indexes are copied on Save and Load so callers never share entries.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]*domain.Index
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		indexes: make(map[string]*domain.Index),
	}
}

// Save stores a copy of idx, replacing any index with the same name.
func (s *IndexStore) Save(_ context.Context, idx *domain.Index) error {
	if idx == nil || idx.Name == "" {
		return fmt.Errorf("%w: index has no name", domain.ErrInvalidInput)
	}
	cp := cloneIndex(idx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[idx.Name] = cp
	return nil
}

// Load returns a copy of the index called name.
func (s *IndexStore) Load(_ context.Context, name string) (*domain.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, name)
	}
	return cloneIndex(idx), nil
}

// List returns summaries sorted by name.
func (s *IndexStore) List(_ context.Context) ([]domain.IndexInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.IndexInfo, 0, len(s.indexes))
	for _, idx := range s.indexes {
		infos = append(infos, domain.IndexInfo{
			Name:       idx.Name,
			Model:      idx.Model,
			Dimensions: idx.Dimensions,
			Chunks:     idx.Len(),
			CreatedAt:  idx.CreatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Delete removes the index called name.
func (s *IndexStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes, name)
	return nil
}

func cloneIndex(idx *domain.Index) *domain.Index {
	cp := *idx
	cp.Entries = make([]domain.IndexEntry, len(idx.Entries))
	for i, e := range idx.Entries {
		e.Chunk.Metadata = maps.Clone(e.Chunk.Metadata)
		e.Vector = append([]float32(nil), e.Vector...)
		cp.Entries[i] = e
	}
	return &cp
}
