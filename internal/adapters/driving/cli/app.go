package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/repochat/internal/adapters/driven/ai"
	"github.com/custodia-labs/repochat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repochat/internal/adapters/driven/metrics"
	"github.com/custodia-labs/repochat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/repochat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/core/services"
	"github.com/custodia-labs/repochat/internal/loaders"
	"github.com/custodia-labs/repochat/internal/logger"
	"github.com/custodia-labs/repochat/internal/postprocessors"
)

// App holds the adapters a command runs against.
type App struct {
	Settings   domain.Settings
	ConfigPath string
	Store      driven.IndexStore
	Prompts    driven.PromptStore
	Embedding  driven.EmbeddingService
	LLM        driven.LLMService
	Metrics    *metrics.Recorder
}

// appLoader builds the App for a command. Tests replace it.
var appLoader = loadApp

// loadApp reads the config file and creates the services selected by need.
// Providers are pinged up front so unreachable models fail before any work.
func loadApp(ctx context.Context, need ai.Need) (*App, error) {
	path, err := file.Locate(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := file.Load(path, os.Getenv)
	if err != nil {
		return nil, err
	}
	settings := cfg.Settings()
	logger.Debug("Using config %s", cfg.Path())

	store, err := sqlite.NewIndexStore(settings.IndexRoot)
	if err != nil {
		return nil, err
	}
	prompts, err := file.NewPromptStore("")
	if err != nil {
		return nil, err
	}

	svcs, err := ai.Init(ctx, settings, need)
	if err != nil {
		return nil, err
	}

	return &App{
		Settings:   settings,
		ConfigPath: cfg.Path(),
		Store:      store,
		Prompts:    prompts,
		Embedding:  svcs.Embedding,
		LLM:        svcs.LLM,
		Metrics:    metrics.New(),
	}, nil
}

// Close releases the AI services.
func (a *App) Close() {
	if a.Embedding != nil {
		a.Embedding.Close()
	}
	if a.LLM != nil {
		a.LLM.Close()
	}
}

// Builder creates the index builder over the configured stack.
func (a *App) Builder() (*services.IndexBuilder, error) {
	if a.Embedding == nil {
		return nil, fmt.Errorf("%w: no embedding service", domain.ErrEmbeddingUnavailable)
	}
	policy, err := postprocessors.DefaultPolicy(a.Settings.Chunking)
	if err != nil {
		return nil, err
	}
	factory := loaders.FactoryFunc(
		loaders.WithWorkers(a.Settings.Loader.Workers),
		loaders.WithParserThreshold(a.Settings.Loader.ParserThreshold),
	)

	b := services.NewIndexBuilder(factory, policy, a.Embedding, a.Store)
	b.SetBatchSize(a.Settings.Embedding.BatchSize)
	if a.Metrics != nil {
		b.SetMetrics(a.Metrics)
	}
	return b, nil
}

// Router creates the session router over the configured repositories.
func (a *App) Router() *services.Router {
	r := services.NewRouter(a.LLM, a.Embedding, a.Store, a.Prompts, a.Settings.Repositories, a.Settings.Retrieval.K)
	if a.Metrics != nil {
		r.SetMetrics(a.Metrics)
	}
	return r
}

// ChatService creates a chat service with an in-memory session table.
func (a *App) ChatService() *services.ChatService {
	return services.NewChatService(a.Router(), memory.NewSessionStore(), a.Store, a.Settings.Repositories)
}

// selectRepositories returns the configured repositories named in names,
// or all of them when names is empty.
func selectRepositories(all []domain.RepositoryConfig, names []string) ([]domain.RepositoryConfig, error) {
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]domain.RepositoryConfig, len(all))
	for _, r := range all {
		byName[r.Name] = r
	}

	var (
		out  []domain.RepositoryConfig
		errs []error
	)
	for _, n := range names {
		r, ok := byName[n]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: repository %q is not configured", domain.ErrInvalidInput, n))
			continue
		}
		out = append(out, r)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}
