package driving

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// IndexBuilder builds one index per repository.
type IndexBuilder interface {
	// Build loads, chunks, embeds and saves the index for one repository.
	// Failures are reported in the returned report, never panicked or
	// propagated to other repositories.
	Build(ctx context.Context, repo domain.RepositoryConfig) domain.BuildReport

	// BuildAll builds every repository independently and returns one
	// report per repository in input order.
	BuildAll(ctx context.Context, repos []domain.RepositoryConfig) []domain.BuildReport
}

// BuildStage names a step in a repository build for progress reporting.
type BuildStage string

// Build stages in execution order.
const (
	StageLoading   BuildStage = "loading"
	StageChunking  BuildStage = "chunking"
	StageEmbedding BuildStage = "embedding"
	StageSaving    BuildStage = "saving"
	StageDone      BuildStage = "done"
)

// BuildProgress is reported as a repository build advances.
type BuildProgress struct {
	Repository string
	Stage      BuildStage
	Done       int
	Total      int
	Message    string
}

// ProgressFunc receives build progress. It must not block.
type ProgressFunc func(BuildProgress)
