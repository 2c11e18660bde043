package loaders

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// failingRegistry fails every normalisation with err.
type failingRegistry struct {
	err error
}

func (r *failingRegistry) Normalise(context.Context, *domain.RawDocument) (*driven.NormaliseResult, error) {
	return nil, r.err
}
func (r *failingRegistry) Register(driven.Normaliser)   {}
func (r *failingRegistry) SupportedMIMETypes() []string { return nil }

func TestUnstructuredLoader_LoadsSupportedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Title\n\nHello")
	writeFile(t, root, "docs/notes.txt", "plain notes")
	writeFile(t, root, "config/app.json", `{"a":1}`)
	writeFile(t, root, "pom.xml", "<project><name>demo</name></project>")
	writeFile(t, root, "logo.png", "\x89PNG")
	writeFile(t, root, "main.py", "print(1)")
	writeFile(t, root, ".secret.txt", "hidden")

	f, err := NewFactory(root, WithWorkers(2))
	require.NoError(t, err)

	docs := collect(t, f, domain.CategoryGeneralUnstructured)
	require.Len(t, docs, 4)

	var sources []string
	for _, doc := range docs {
		sources = append(sources, filepath.Base(doc.Source()))
		assert.Empty(t, doc.Language())
	}
	sort.Strings(sources)
	assert.Equal(t, []string{"README.md", "app.json", "notes.txt", "pom.xml"}, sources)
}

func TestUnstructuredLoader_FormatErrorsSkippedWithWarning(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	root := t.TempDir()
	writeFile(t, root, "good.json", `{"ok":true}`)
	writeFile(t, root, "bad.json", `{"ok":`)

	f, err := NewFactory(root)
	require.NoError(t, err)

	docs := collect(t, f, domain.CategoryGeneralUnstructured)
	require.Len(t, docs, 1)
	assert.Equal(t, "good.json", filepath.Base(docs[0].Source()))
	assert.Contains(t, buf.String(), "bad.json")
	assert.Contains(t, buf.String(), "[WARN]")
}

func TestUnstructuredLoader_OtherErrorsPropagate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "b.txt", "b")

	ioErr := errors.New("disk on fire")
	f, err := NewFactory(root, WithNormalisers(&failingRegistry{err: ioErr}))
	require.NoError(t, err)

	loader, err := f.Loader(domain.CategoryGeneralUnstructured)
	require.NoError(t, err)

	var errs []error
	for _, err := range loader.Load(context.Background()) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, ioErr)
	}
}

func TestUnstructuredLoader_EarlyBreak(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		writeFile(t, root, name, name)
	}

	f, err := NewFactory(root, WithWorkers(1))
	require.NoError(t, err)
	loader, err := f.Loader(domain.CategoryGeneralUnstructured)
	require.NoError(t, err)

	n := 0
	for _, err := range loader.Load(context.Background()) {
		require.NoError(t, err)
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestUnstructuredLoader_EmptyRepository(t *testing.T) {
	f, err := NewFactory(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, collect(t, f, domain.CategoryGeneralUnstructured))
}
