package driven

import "github.com/custodia-labs/repochat/internal/core/domain"

// Splitter divides a document into ordered chunks.
// Every chunk carries a copy of the document's metadata. Empty content
// yields zero chunks and no error.
type Splitter interface {
	// Name returns the splitter name for logging and configuration.
	Name() string

	// Split returns the chunks of doc in order.
	Split(doc domain.Document) ([]domain.Chunk, error)
}

// ChunkingPolicy picks a splitter per document by its language tag.
type ChunkingPolicy interface {
	// Split chunks doc with the splitter registered for its language,
	// falling back to the generic splitter.
	Split(doc domain.Document) ([]domain.Chunk, error)
}
