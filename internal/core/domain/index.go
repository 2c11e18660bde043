package domain

import "time"

// Index is the persisted vector store for one repository.
// It is built wholesale by the index builder and read-only afterwards.
type Index struct {
	// Name is the repository name the index is keyed by.
	Name string

	// Model is the embedding model that produced the vectors.
	Model string

	// Dimensions is the vector size shared by all entries.
	Dimensions int

	// Entries pairs each chunk with its embedding.
	Entries []IndexEntry

	// CreatedAt is when the index was built.
	CreatedAt time.Time
}

// IndexEntry is a single chunk and its embedding vector.
type IndexEntry struct {
	Chunk  Chunk
	Vector []float32
}

// Len returns the number of entries.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.Entries)
}

// IndexInfo summarises a persisted index without loading its entries.
type IndexInfo struct {
	Name       string
	Model      string
	Dimensions int
	Chunks     int
	CreatedAt  time.Time
}

// RetrievedChunk is a chunk returned by a retriever.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Repository is the name of the index the chunk came from.
	Repository string

	// Rank is 1-based: within the originating retriever, or the fused
	// position when returned by the ensemble.
	Rank int

	// Score is the similarity (per-source) or fused score (ensemble).
	Score float64
}
