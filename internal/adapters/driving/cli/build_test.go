package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/adapters/driven/ai"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

const configPy = `def load_config(path):
    """Parse the YAML config at path."""
    with open(path) as f:
        return f.read()
`

func TestBuildCmd_BuildsEveryRepository(t *testing.T) {
	app := testApp(t, "api", "web")
	writeRepoFile(t, app, "api", "config.py", configPy)
	writeRepoFile(t, app, "web", "README.md", "# Web\n\nThe web frontend.\n")
	need := useApp(t, app)

	out, _, err := execute(t, "build")

	require.NoError(t, err)
	assert.Equal(t, ai.NeedEmbedding, *need)
	assert.Contains(t, out, "✓ api")
	assert.Contains(t, out, "✓ web")

	infos, err := app.Store.List(t.Context())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "api", infos[0].Name)
	assert.Equal(t, "fake-embed", infos[0].Model)
	assert.Equal(t, 3, infos[0].Dimensions)
}

func TestBuildCmd_CorruptPDFIsSkipped(t *testing.T) {
	app := testApp(t, "svc")
	var py strings.Builder
	for i := range 25 {
		fmt.Fprintf(&py, "def handler_%d(event):\n    return event\n", i)
	}
	writeRepoFile(t, app, "svc", "handlers.py", py.String())
	writeRepoFile(t, app, "svc", "broken.pdf", "%PDF-1.4 truncated")
	useApp(t, app)

	out, errOut, err := execute(t, "build")

	require.NoError(t, err)
	assert.Contains(t, out, "✓ svc")
	assert.Contains(t, errOut, "broken.pdf")

	idx, err := app.Store.Load(t.Context(), "svc")
	require.NoError(t, err)
	require.NotEmpty(t, idx.Entries)
	for _, e := range idx.Entries {
		assert.Equal(t, "python", e.Chunk.Metadata[domain.MetaLanguage])
	}
}

func TestBuildCmd_SelectsNamedRepositories(t *testing.T) {
	app := testApp(t, "api", "web")
	writeRepoFile(t, app, "api", "config.py", configPy)
	writeRepoFile(t, app, "web", "README.md", "# Web\n")
	useApp(t, app)

	out, _, err := execute(t, "build", "web")

	require.NoError(t, err)
	assert.NotContains(t, out, "api")

	infos, err := app.Store.List(t.Context())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "web", infos[0].Name)
}

func TestBuildCmd_UnknownRepository(t *testing.T) {
	useApp(t, testApp(t, "api"))

	_, _, err := execute(t, "build", "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestBuildCmd_NoRepositories(t *testing.T) {
	useApp(t, testApp(t))

	_, _, err := execute(t, "build")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestBuildCmd_EmptyRepositoryIsSkipped(t *testing.T) {
	app := testApp(t, "empty")
	useApp(t, app)

	out, _, err := execute(t, "build")

	require.NoError(t, err)
	assert.Contains(t, out, "- empty: skipped")
}

func TestBuildCmd_FailureReturnsError(t *testing.T) {
	app := testApp(t, "api", "web")
	writeRepoFile(t, app, "api", "config.py", configPy)
	writeRepoFile(t, app, "web", "README.md", "# Web\n")
	app.Embedding = &fakeEmbedder{err: errors.New("provider down")}
	useApp(t, app)

	out, _, err := execute(t, "build")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 repositories failed")
	assert.Contains(t, out, "✗ api")
	assert.Contains(t, out, "✗ web")

	infos, listErr := app.Store.List(t.Context())
	require.NoError(t, listErr)
	assert.Empty(t, infos)
}

func TestBuildCmd_RecordsMetrics(t *testing.T) {
	app := testApp(t, "api", "empty")
	writeRepoFile(t, app, "api", "config.py", configPy)
	useApp(t, app)

	_, _, err := execute(t, "build")
	require.NoError(t, err)

	expected := `
# HELP repochat_index_builds_total Repository index builds by result.
# TYPE repochat_index_builds_total counter
repochat_index_builds_total{result="ok"} 1
repochat_index_builds_total{result="skipped"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(app.Metrics.Registry(),
		strings.NewReader(expected), "repochat_index_builds_total"))
}

func TestBuildCmd_LoaderError(t *testing.T) {
	failLoader(t, errLoad)

	_, _, err := execute(t, "build")

	assert.ErrorIs(t, err, errLoad)
}

func TestSelectRepositories(t *testing.T) {
	all := []domain.RepositoryConfig{{Name: "a", Path: "/a"}, {Name: "b", Path: "/b"}}

	got, err := selectRepositories(all, nil)
	require.NoError(t, err)
	assert.Equal(t, all, got)

	got, err = selectRepositories(all, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []domain.RepositoryConfig{{Name: "b", Path: "/b"}}, got)

	_, err = selectRepositories(all, []string{"x", "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)
	assert.Contains(t, err.Error(), `"y"`)
}

func TestProgressPrinter(t *testing.T) {
	buf := new(bytes.Buffer)
	p := progressPrinter(buf)

	p(driving.BuildProgress{Repository: "api", Stage: driving.StageLoading})
	p(driving.BuildProgress{Repository: "api", Stage: driving.StageEmbedding, Done: 1, Total: 2})
	p(driving.BuildProgress{Repository: "api", Stage: driving.StageDone, Message: "skipped"})

	assert.Equal(t, "[api] loading\n[api] done: skipped\n", buf.String())
}

// countingBuilder counts rebuilds and cancels once it has seen want.
type countingBuilder struct {
	want   int
	cancel context.CancelFunc
	built  []string
}

func (b *countingBuilder) Build(_ context.Context, repo domain.RepositoryConfig) domain.BuildReport {
	b.built = append(b.built, repo.Name)
	if len(b.built) >= b.want {
		b.cancel()
	}
	return domain.BuildReport{Repository: repo.Name, Chunks: 1}
}

func TestWatchAndRebuild_RebuildsChangedRepository(t *testing.T) {
	app := testApp(t, "api")
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Second)
	defer cancel()

	b := &countingBuilder{want: 1, cancel: cancel}
	cmd := &cobra.Command{}
	out := new(bytes.Buffer)
	cmd.SetOut(out)

	done := make(chan error, 1)
	go func() { done <- watchAndRebuild(ctx, cmd, b, app.Settings.Repositories) }()

	// Keep writing until the watcher is up and reports the burst.
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			require.NotEmpty(t, b.built, "no rebuild before timeout")
			assert.Equal(t, "api", b.built[0])
			assert.Contains(t, out.String(), "✓ api")
			return
		case <-tick.C:
			writeRepoFile(t, app, "api", "config.py", configPy)
		}
	}
}

func TestWatchAndRebuild_NothingToWatch(t *testing.T) {
	cmd := &cobra.Command{}
	repos := []domain.RepositoryConfig{{Name: "gone", Path: "/does/not/exist"}}

	err := watchAndRebuild(t.Context(), cmd, &countingBuilder{}, repos)

	assert.Error(t, err)
}
