package loaders

import (
	"context"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure codeLoader implements the interface.
var _ driven.DocumentLoader = (*codeLoader)(nil)

// codeLoader loads the source files of one language.
type codeLoader struct {
	root      string
	category  domain.Category
	threshold int
	seg       segmenter
	match     func(string) bool
}

func newCodeLoaderFor(c domain.Category) loaderConstructor {
	return func(f *Factory) driven.DocumentLoader {
		return &codeLoader{
			root:      f.root,
			category:  c,
			threshold: f.threshold,
			seg:       segmenterFor(c),
			match:     extensionMatcher(c.Extensions()),
		}
	}
}

// Category returns the language this loader serves.
func (l *codeLoader) Category() domain.Category {
	return l.category
}

// Load walks the repository and yields one document per small file, or
// one per top-level unit plus the simplified remainder for larger files.
func (l *codeLoader) Load(ctx context.Context) iter.Seq2[domain.Document, error] {
	return func(yield func(domain.Document, error) bool) {
		paths, err := walkFiles(ctx, l.root, l.match)
		if err != nil {
			yield(domain.Document{}, fmt.Errorf("scanning %s: %w", l.root, err))
			return
		}
		logger.Debug("%s loader: %d files under %s", l.category, len(paths), l.root)

		for _, path := range paths {
			if err := ctx.Err(); err != nil {
				yield(domain.Document{}, err)
				return
			}

			data, err := os.ReadFile(path)
			if err != nil {
				if !yield(domain.Document{}, fmt.Errorf("reading %s: %w", path, err)) {
					return
				}
				continue
			}

			for _, doc := range l.documents(path, string(data)) {
				if !yield(doc, nil) {
					return
				}
			}
		}
	}
}

// documents converts one source file into documents.
func (l *codeLoader) documents(path, source string) []domain.Document {
	base := domain.NewDocument(path, source).With(domain.MetaLanguage, l.category.String())

	if l.seg == nil || lineCount(source) < l.threshold {
		return []domain.Document{base}
	}

	segments := parseSegments(l.seg, source)
	docs := make([]domain.Document, 0, len(segments))
	for _, s := range segments {
		doc := domain.Document{Content: s.Content, Metadata: base.Metadata}
		if s.ContentType != "" {
			doc = doc.With(domain.MetaContentType, s.ContentType)
		}
		docs = append(docs, doc)
	}
	return docs
}

// lineCount counts lines the way an editor does: a trailing newline does
// not start a new line.
func lineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
