package loaders

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure unstructuredLoader implements the interface.
var _ driven.DocumentLoader = (*unstructuredLoader)(nil)

// unstructuredLoader extracts text from documentation and data files on a
// bounded worker pool. Output order follows completion, not file order.
type unstructuredLoader struct {
	root        string
	workers     int
	normalisers driven.NormaliserRegistry
	match       func(string) bool
}

func newUnstructuredLoader(f *Factory) driven.DocumentLoader {
	return &unstructuredLoader{
		root:        f.root,
		workers:     f.workers,
		normalisers: f.normalisers,
		match:       extensionMatcher(domain.CategoryGeneralUnstructured.Extensions()),
	}
}

// Category returns domain.CategoryGeneralUnstructured.
func (l *unstructuredLoader) Category() domain.Category {
	return domain.CategoryGeneralUnstructured
}

// extraction is the outcome for one file.
type extraction struct {
	doc     domain.Document
	err     error
	skipped bool
}

// Load walks the repository and extracts every matching file.
// Format errors are logged and the file is skipped; I/O errors are
// yielded and the scan continues.
func (l *unstructuredLoader) Load(ctx context.Context) iter.Seq2[domain.Document, error] {
	return func(yield func(domain.Document, error) bool) {
		paths, err := walkFiles(ctx, l.root, l.match)
		if err != nil {
			yield(domain.Document{}, fmt.Errorf("scanning %s: %w", l.root, err))
			return
		}
		logger.Debug("unstructured loader: %d files under %s", len(paths), l.root)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		results := make(chan extraction)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(l.workers, 1))

		go func() {
			for _, path := range paths {
				g.Go(func() error {
					res := l.extract(gctx, path)
					select {
					case results <- res:
					case <-gctx.Done():
					}
					return nil
				})
			}
			_ = g.Wait()
			close(results)
		}()

		for res := range results {
			if res.skipped {
				continue
			}
			if !yield(res.doc, res.err) {
				cancel()
				for range results {
				}
				return
			}
		}
		if err := ctx.Err(); err != nil {
			yield(domain.Document{}, err)
		}
	}
}

// extract reads and normalises a single file.
func (l *unstructuredLoader) extract(ctx context.Context, path string) extraction {
	if err := ctx.Err(); err != nil {
		return extraction{skipped: true}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return extraction{err: fmt.Errorf("reading %s: %w", path, err)}
	}

	raw := &domain.RawDocument{
		URI:      path,
		MIMEType: detectMIMEType(path),
		Content:  data,
	}
	result, err := l.normalisers.Normalise(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrLoaderFailure) {
			logger.Warn("Skipping %s: %v", path, err)
			return extraction{skipped: true}
		}
		return extraction{err: fmt.Errorf("extracting %s: %w", path, err)}
	}

	doc := result.Document
	if doc.Source() != path {
		doc = doc.With(domain.MetaSource, path)
	}
	return extraction{doc: doc}
}
