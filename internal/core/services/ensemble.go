package services

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// rrfK is the Reciprocal Rank Fusion constant.
const rrfK = 60

// EnsembleRetriever queries every repository of a session and fuses the
// per-repository rankings with equal weights.
type EnsembleRetriever struct {
	embedder   driven.EmbeddingService
	retrievers []driven.Retriever
}

// NewEnsembleRetriever creates an ensemble over retrievers.
// The retriever order is fixed for the lifetime of the ensemble.
func NewEnsembleRetriever(embedder driven.EmbeddingService, retrievers ...driven.Retriever) *EnsembleRetriever {
	return &EnsembleRetriever{
		embedder:   embedder,
		retrievers: append([]driven.Retriever(nil), retrievers...),
	}
}

// Len returns the number of retrievers in the ensemble.
func (e *EnsembleRetriever) Len() int {
	return len(e.retrievers)
}

// Retrieve embeds the query once and returns the fused results of all
// retrievers.
func (e *EnsembleRetriever) Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	if len(e.retrievers) == 0 {
		return nil, domain.ErrEmptyRetrieverSet
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", domain.ErrRetrievalFailure, err)
	}
	return e.RetrieveVector(ctx, vec)
}

// RetrieveVector queries every retriever concurrently with vec. All
// results are collected before fusion; if any retriever fails the whole
// query fails with domain.ErrRetrievalFailure.
func (e *EnsembleRetriever) RetrieveVector(ctx context.Context, vec []float32) ([]domain.RetrievedChunk, error) {
	if len(e.retrievers) == 0 {
		return nil, domain.ErrEmptyRetrieverSet
	}

	lists := make([][]domain.RetrievedChunk, len(e.retrievers))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range e.retrievers {
		g.Go(func() error {
			res, err := r.Retrieve(gctx, vec)
			if err != nil {
				return fmt.Errorf("retriever %s: %w", r.Name(), err)
			}
			lists[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailure, err)
	}

	fused := fuseRankings(lists)
	logger.Debug("Ensemble: fused %d chunks from %d retrievers", len(fused), len(lists))
	return fused, nil
}

// fuseRankings merges ranked lists using Reciprocal Rank Fusion with
// equal weights: a chunk scores 1/(rrfK + rank) at its best rank. Chunks
// are identified by repository and chunk ID, and a chunk repeated within
// or across lists keeps only its best rank, so every first-ranked chunk
// outscores every second-ranked one and each repository's best match is
// represented ahead of any repository's runner-up.
// Ties break by repository name, chunk position and chunk ID. The
// returned Rank is the fused rank.
func fuseRankings(lists [][]domain.RetrievedChunk) []domain.RetrievedChunk {
	type key struct {
		repository string
		id         string
	}
	type fused struct {
		chunk    domain.RetrievedChunk
		bestRank int
	}

	byKey := make(map[key]*fused)
	order := make([]*fused, 0)
	for _, list := range lists {
		for i, rc := range list {
			rank := i + 1
			k := key{repository: rc.Repository, id: rc.Chunk.ID}
			f, ok := byKey[k]
			if !ok {
				f = &fused{chunk: rc, bestRank: rank}
				byKey[k] = f
				order = append(order, f)
				continue
			}
			if rank < f.bestRank {
				f.bestRank = rank
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.bestRank != b.bestRank {
			return a.bestRank < b.bestRank
		}
		if a.chunk.Repository != b.chunk.Repository {
			return a.chunk.Repository < b.chunk.Repository
		}
		if a.chunk.Chunk.Position != b.chunk.Chunk.Position {
			return a.chunk.Chunk.Position < b.chunk.Chunk.Position
		}
		return a.chunk.Chunk.ID < b.chunk.Chunk.ID
	})

	out := make([]domain.RetrievedChunk, len(order))
	for i, f := range order {
		rc := f.chunk
		rc.Rank = i + 1
		rc.Score = 1.0 / float64(rrfK+f.bestRank)
		out[i] = rc
	}
	return out
}
