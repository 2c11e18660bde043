package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure IndexBuilder implements the interface.
var _ driving.IndexBuilder = (*IndexBuilder)(nil)

// IndexBuilder loads, chunks, embeds and saves one index per repository.
type IndexBuilder struct {
	loaders     driven.LoaderFactoryFunc
	policy      driven.ChunkingPolicy
	embedder    driven.EmbeddingService
	store       driven.IndexStore
	batchSize   int
	concurrency int
	metrics     driven.BuildMetrics
	progress    driving.ProgressFunc
	now         func() time.Time
}

// NewIndexBuilder creates an index builder.
func NewIndexBuilder(
	loaders driven.LoaderFactoryFunc,
	policy driven.ChunkingPolicy,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
) *IndexBuilder {
	return &IndexBuilder{
		loaders:     loaders,
		policy:      policy,
		embedder:    embedder,
		store:       store,
		batchSize:   domain.DefaultEmbedBatchSize,
		concurrency: 1,
		now:         time.Now,
	}
}

// SetBatchSize sets how many chunks are embedded per request.
func (b *IndexBuilder) SetBatchSize(n int) {
	if n > 0 {
		b.batchSize = n
	}
}

// SetConcurrency sets how many repositories BuildAll builds at once.
func (b *IndexBuilder) SetConcurrency(n int) {
	if n > 0 {
		b.concurrency = n
	}
}

// SetMetrics records build outcomes. Optional.
func (b *IndexBuilder) SetMetrics(m driven.BuildMetrics) {
	b.metrics = m
}

// SetProgress receives progress updates. Optional.
func (b *IndexBuilder) SetProgress(fn driving.ProgressFunc) {
	b.progress = fn
}

// BuildAll builds every repository and returns one report per entry in
// input order. A failing repository does not stop the others.
func (b *IndexBuilder) BuildAll(ctx context.Context, repos []domain.RepositoryConfig) []domain.BuildReport {
	reports := make([]domain.BuildReport, len(repos))

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, repo := range repos {
		g.Go(func() error {
			reports[i] = b.Build(ctx, repo)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

// Build builds the index of one repository.
func (b *IndexBuilder) Build(ctx context.Context, repo domain.RepositoryConfig) (report domain.BuildReport) {
	start := b.now()
	report.Repository = repo.Name
	defer func() {
		report.Duration = b.now().Sub(start)
		if report.Err != nil {
			logger.Error("Build failed for '%s': %v", repo.Name, report.Err)
		}
		if b.metrics != nil {
			b.metrics.ObserveBuild(report)
		}
		b.report(repo.Name, driving.StageDone, report.Chunks, report.Chunks, report.Reason)
	}()

	if err := repo.Validate(); err != nil {
		msg := fmt.Sprintf("Skipping invalid repository entry: %v", err)
		logger.Warn("%s", msg)
		report.Skipped = true
		report.Reason = msg
		return report
	}

	logger.Section(fmt.Sprintf("Building index for %s", repo.Name))

	factory, err := b.loaders(repo.Path)
	if err != nil {
		report.Err = fmt.Errorf("creating loaders: %w", err)
		return report
	}

	b.report(repo.Name, driving.StageLoading, 0, 0, "")
	docs, warnings := b.loadDocuments(ctx, factory, repo.Name)
	report.Warnings = warnings
	report.Documents = len(docs)
	if err := ctx.Err(); err != nil {
		report.Err = err
		return report
	}
	if len(docs) == 0 {
		report.Skipped = true
		report.Reason = fmt.Sprintf("No documents were loaded for '%s'. Skipping.", repo.Name)
		logger.Info("%s", report.Reason)
		return report
	}

	b.report(repo.Name, driving.StageChunking, 0, len(docs), "")
	chunks, err := b.chunkDocuments(docs)
	if err != nil {
		report.Err = err
		return report
	}
	if len(chunks) == 0 {
		report.Skipped = true
		report.Reason = fmt.Sprintf("No chunks were created for '%s'. Skipping index creation.", repo.Name)
		logger.Info("%s", report.Reason)
		return report
	}

	vectors, err := b.embed(ctx, repo.Name, chunks)
	if err != nil {
		report.Err = err
		return report
	}

	idx := &domain.Index{
		Name:       repo.Name,
		Model:      b.embedder.ModelName(),
		Dimensions: len(vectors[0]),
		Entries:    make([]domain.IndexEntry, len(chunks)),
		CreatedAt:  b.now().UTC(),
	}
	for i := range chunks {
		idx.Entries[i] = domain.IndexEntry{Chunk: chunks[i], Vector: vectors[i]}
	}

	b.report(repo.Name, driving.StageSaving, 0, len(chunks), "")
	if err := b.store.Save(ctx, idx); err != nil {
		report.Err = fmt.Errorf("saving index: %w", err)
		return report
	}

	report.Chunks = len(chunks)
	logger.Info("Indexed %d documents as %d chunks for '%s'", len(docs), len(chunks), repo.Name)
	return report
}

// loadDocuments runs every loader of the factory. A loader that cannot
// be created, or a file that fails to load, is reported as a warning;
// documents already loaded by the category are kept.
// Documents are ordered by source so rebuilds do not depend on loader
// scheduling.
func (b *IndexBuilder) loadDocuments(
	ctx context.Context, factory driven.LoaderFactory, name string,
) ([]domain.Document, []string) {
	var docs []domain.Document
	var warnings []string

	for _, category := range factory.Categories() {
		loader, err := factory.Loader(category)
		if err != nil {
			msg := fmt.Sprintf("Could not use loader for type '%s': %v", category, err)
			logger.Warn("%s", msg)
			warnings = append(warnings, msg)
			continue
		}

		var loaded []domain.Document
		for doc, err := range loader.Load(ctx) {
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return docs, warnings
				}
				msg := fmt.Sprintf("Loader for type '%s' skipped a file: %v", category, err)
				logger.Warn("%s", msg)
				warnings = append(warnings, msg)
				continue
			}
			loaded = append(loaded, doc.With(domain.MetaRepository, name))
		}

		logger.Debug("Loaded %d %s documents for '%s'", len(loaded), category, name)
		docs = append(docs, loaded...)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Source() < docs[j].Source()
	})
	return docs, warnings
}

// chunkDocuments splits every document with the chunking policy.
func (b *IndexBuilder) chunkDocuments(docs []domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, doc := range docs {
		parts, err := b.policy.Split(doc)
		if err != nil {
			return nil, fmt.Errorf("chunking %s: %w", doc.Source(), err)
		}
		chunks = append(chunks, parts...)
	}
	return chunks, nil
}

// embed embeds chunk contents in batches and checks that every vector
// has the same dimensionality.
func (b *IndexBuilder) embed(ctx context.Context, name string, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += b.batchSize {
		end := min(start+b.batchSize, len(chunks))
		b.report(name, driving.StageEmbedding, start, len(chunks), "")

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		batch, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
				domain.ErrEmbeddingUnavailable, len(texts), len(batch))
		}
		vectors = append(vectors, batch...)
	}

	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dims || dims == 0 {
			return nil, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(v), dims)
		}
	}
	return vectors, nil
}

func (b *IndexBuilder) report(name string, stage driving.BuildStage, done, total int, msg string) {
	if b.progress == nil {
		return
	}
	b.progress(driving.BuildProgress{
		Repository: name,
		Stage:      stage,
		Done:       done,
		Total:      total,
		Message:    msg,
	})
}
