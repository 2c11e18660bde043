package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/adapters/driven/ai"
	"github.com/custodia-labs/repochat/internal/adapters/driven/metrics"
	"github.com/custodia-labs/repochat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// fakeEmbedder returns the same vector for every text.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return 3 }
func (f *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeLLM answers every prompt with a fixed response.
type fakeLLM struct {
	mu       sync.Mutex
	response string
	prompts  []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.response, nil
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

// testApp returns an App over in-memory adapters with one repository
// per name, each rooted in its own temp directory.
func testApp(t *testing.T, names ...string) *App {
	t.Helper()

	settings := domain.DefaultSettings()
	for _, name := range names {
		dir := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		settings.Repositories = append(settings.Repositories, domain.RepositoryConfig{Name: name, Path: dir})
	}

	return &App{
		Settings:   settings,
		ConfigPath: "test-config.yml",
		Store:      memory.NewIndexStore(),
		Embedding:  &fakeEmbedder{},
		LLM:        &fakeLLM{response: "It parses the config."},
		Metrics:    metrics.New(),
	}
}

// writeRepoFile writes content to name under the repository's root.
func writeRepoFile(t *testing.T, app *App, repo, name, content string) {
	t.Helper()
	r, ok := app.Settings.Repository(repo)
	require.True(t, ok)
	path := filepath.Join(r.Path, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// useApp makes commands run against app and records the requested services.
func useApp(t *testing.T, app *App) *ai.Need {
	t.Helper()
	var need ai.Need
	original := appLoader
	appLoader = func(_ context.Context, n ai.Need) (*App, error) {
		need = n
		return app, nil
	}
	t.Cleanup(func() { appLoader = original })
	return &need
}

// failLoader makes app loading fail with err.
func failLoader(t *testing.T, err error) {
	t.Helper()
	original := appLoader
	appLoader = func(context.Context, ai.Need) (*App, error) { return nil, err }
	t.Cleanup(func() { appLoader = original })
}

var errLoad = errors.New("config not found")

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		logger.SetOutput(os.Stderr)
		resetFlags()
		resetContexts(rootCmd)
	})

	err := rootCmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

// resetContexts clears the contexts cobra caches on subcommands, so the next
// run inherits its own context instead of a previous test's cancelled one.
func resetContexts(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		c.SetContext(nil)
		resetContexts(c)
	}
}

// resetFlags restores flag variables between runs of the shared root command.
func resetFlags() {
	configPath = ""
	verbose = false
	buildWatch = false
	buildConcurrency = 1
	chatProfile = ""
	askProfile = "repo"
	askJSON = false
	indexesJSON = false
	initForce = false
	for _, c := range []string{"port", "metrics"} {
		if f := mcpServeCmd.Flags().Lookup(c); f != nil {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
}
