package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure IndexRetriever implements the interface.
var _ driven.Retriever = (*IndexRetriever)(nil)

// IndexRetriever serves one loaded index by exact cosine similarity.
type IndexRetriever struct {
	index *domain.Index
	k     int
	norms []float64
}

// NewIndexRetriever creates a retriever returning the top k chunks of idx.
// A non-positive k uses domain.DefaultRetrievalK.
func NewIndexRetriever(idx *domain.Index, k int) *IndexRetriever {
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}
	norms := make([]float64, len(idx.Entries))
	for i, e := range idx.Entries {
		norms[i] = norm(e.Vector)
	}
	return &IndexRetriever{index: idx, k: k, norms: norms}
}

// Name returns the repository name of the index.
func (r *IndexRetriever) Name() string {
	return r.index.Name
}

// Retrieve returns the k most similar chunks, most similar first.
func (r *IndexRetriever) Retrieve(ctx context.Context, query []float32) ([]domain.RetrievedChunk, error) {
	if r.index.Len() == 0 {
		return nil, nil
	}
	if len(query) != r.index.Dimensions {
		return nil, fmt.Errorf("%w: index %s has %d dimensions, query has %d",
			domain.ErrDimensionMismatch, r.index.Name, r.index.Dimensions, len(query))
	}

	type scored struct {
		i     int
		score float64
	}
	qn := norm(query)
	hits := make([]scored, 0, len(r.index.Entries))
	for i, e := range r.index.Entries {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits = append(hits, scored{i: i, score: cosine(query, e.Vector, qn, r.norms[i])})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})
	if len(hits) > r.k {
		hits = hits[:r.k]
	}

	out := make([]domain.RetrievedChunk, len(hits))
	for rank, h := range hits {
		out[rank] = domain.RetrievedChunk{
			Chunk:      r.index.Entries[h.i].Chunk,
			Repository: r.index.Name,
			Rank:       rank + 1,
			Score:      h.score,
		}
	}
	return out, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns the cosine similarity of a and b given their norms.
// Zero vectors have similarity 0.
func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (na * nb)
}
