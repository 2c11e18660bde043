package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/adapters/driven/ai"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
	"github.com/custodia-labs/repochat/internal/loaders"
	"github.com/custodia-labs/repochat/internal/logger"
)

var (
	buildWatch       bool
	buildConcurrency int
)

var buildCmd = &cobra.Command{
	Use:   "build [repository...]",
	Short: "Build repository indexes",
	Long: `Loads, chunks and embeds each configured repository and saves one index
per repository. Existing indexes are replaced only after the new one has
been written in full.

With no arguments every configured repository is built. Repositories that
fail are reported and do not stop the others.

Use --watch to keep running and rebuild a repository whenever its files
change.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "rebuild repositories when their files change")
	buildCmd.Flags().IntVar(&buildConcurrency, "concurrency", 1, "number of repositories built in parallel")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := appLoader(ctx, ai.NeedEmbedding)
	if err != nil {
		return err
	}
	defer app.Close()

	repos, err := selectRepositories(app.Settings.Repositories, args)
	if err != nil {
		return err
	}
	if len(repos) == 0 {
		return fmt.Errorf("%w: no repositories configured in %s", domain.ErrConfiguration, app.ConfigPath)
	}

	builder, err := app.Builder()
	if err != nil {
		return err
	}
	builder.SetConcurrency(buildConcurrency)
	builder.SetProgress(progressPrinter(cmd.ErrOrStderr()))

	reports := builder.BuildAll(ctx, repos)
	failed := printReports(cmd, reports)

	if buildWatch {
		return watchAndRebuild(ctx, cmd, builder, repos)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d repositories failed to build", failed, len(reports))
	}
	return nil
}

// progressPrinter writes one line per stage change. Embedding progress is
// only shown in verbose mode.
func progressPrinter(w io.Writer) driving.ProgressFunc {
	var mu sync.Mutex
	return func(p driving.BuildProgress) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case p.Stage == driving.StageEmbedding && p.Done > 0:
			if logger.IsVerbose() {
				fmt.Fprintf(w, "[%s] embedding %d/%d\n", p.Repository, p.Done, p.Total)
			}
		case p.Message != "":
			fmt.Fprintf(w, "[%s] %s: %s\n", p.Repository, p.Stage, p.Message)
		default:
			fmt.Fprintf(w, "[%s] %s\n", p.Repository, p.Stage)
		}
	}
}

// printReports prints one summary line per report and returns the number
// of failed builds.
func printReports(cmd *cobra.Command, reports []domain.BuildReport) int {
	failed := 0
	for i := range reports {
		r := &reports[i]
		switch {
		case r.Err != nil:
			failed++
			cmd.Printf("✗ %s: %v\n", r.Repository, r.Err)
		case r.Skipped:
			cmd.Printf("- %s: skipped (%s)\n", r.Repository, r.Reason)
		default:
			cmd.Printf("✓ %s: %d documents, %d chunks (%s)\n",
				r.Repository, r.Documents, r.Chunks, r.Duration.Round(time.Millisecond))
		}
		for _, w := range r.Warnings {
			cmd.Printf("    warning: %s\n", w)
		}
	}
	return failed
}

// rebuilder is the part of the index builder the watch loop needs.
type rebuilder interface {
	Build(ctx context.Context, repo domain.RepositoryConfig) domain.BuildReport
}

// watchAndRebuild watches every repository and rebuilds one whenever its
// tree changes. It returns when ctx is cancelled.
func watchAndRebuild(ctx context.Context, cmd *cobra.Command, b rebuilder, repos []domain.RepositoryConfig) error {
	changed := make(chan domain.RepositoryConfig)
	var wg sync.WaitGroup

	watched := 0
	for _, repo := range repos {
		events, err := loaders.Watch(ctx, repo.Path, loaders.DefaultDebounce)
		if err != nil {
			logger.Warn("not watching %s: %v", repo.Name, err)
			continue
		}
		watched++
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range events {
				select {
				case changed <- repo:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	if watched == 0 {
		return fmt.Errorf("no repository could be watched")
	}

	go func() {
		wg.Wait()
		close(changed)
	}()

	cmd.Println("Watching for changes (Ctrl+C to stop)...")
	for repo := range changed {
		logger.Info("Change detected in %s, rebuilding", repo.Name)
		printReports(cmd, []domain.BuildReport{b.Build(ctx, repo)})
	}
	return nil
}
