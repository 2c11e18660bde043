package driven

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// IndexStore persists one index per repository name.
//
// Save replaces any existing index with the same name atomically: a
// concurrent Load sees either the old index or the new one, never a
// partial write. Indexes are read-shared; only the index builder saves.
type IndexStore interface {
	// Save persists idx under idx.Name, replacing any previous index.
	Save(ctx context.Context, idx *domain.Index) error

	// Load reads the index for name.
	// Returns domain.ErrIndexNotFound if none exists.
	Load(ctx context.Context, name string) (*domain.Index, error)

	// List returns summaries of all persisted indexes, sorted by name.
	List(ctx context.Context) ([]domain.IndexInfo, error)

	// Delete removes the index for name. Deleting a missing index is not an error.
	Delete(ctx context.Context, name string) error
}

// Retriever returns the top-k nearest chunks of one repository.
type Retriever interface {
	// Name returns the repository name the retriever serves.
	Name() string

	// Retrieve returns at most k chunks ordered by descending similarity,
	// with Rank starting at 1.
	Retrieve(ctx context.Context, query []float32) ([]domain.RetrievedChunk, error)
}
