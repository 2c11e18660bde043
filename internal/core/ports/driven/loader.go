package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// DocumentLoader produces the documents of one category for one repository.
//
// Load is lazy: nothing is read until the sequence is iterated, and each
// call starts a fresh scan. The sequence is finite. A non-nil error in the
// sequence is a failure the caller must handle (typically I/O); files that
// merely fail to parse are skipped by the loader itself.
type DocumentLoader interface {
	// Category returns the category this loader serves.
	Category() domain.Category

	// Load returns the document sequence.
	Load(ctx context.Context) iter.Seq2[domain.Document, error]
}

// LoaderFactory creates loaders for a repository root.
type LoaderFactory interface {
	// Loader returns the loader for a category.
	// Returns domain.ErrUnsupportedCategory for unregistered categories.
	Loader(category domain.Category) (DocumentLoader, error)

	// Categories returns the registered categories in load order.
	Categories() []domain.Category
}

// LoaderFactoryFunc builds a LoaderFactory for a repository root.
// Returns domain.ErrConfiguration when root is empty.
type LoaderFactoryFunc func(root string) (LoaderFactory, error)
