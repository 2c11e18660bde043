package loaders

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/normalisers"
)

// Ensure Factory implements the interface.
var _ driven.LoaderFactory = (*Factory)(nil)

// loaderConstructor builds the loader for one category.
type loaderConstructor func(f *Factory) driven.DocumentLoader

// Factory creates document loaders for a single repository root.
type Factory struct {
	root         string
	workers      int
	threshold    int
	normalisers  driven.NormaliserRegistry
	constructors map[domain.Category]loaderConstructor
}

// Option configures a Factory.
type Option func(*Factory)

// WithWorkers bounds concurrent extraction in the unstructured loader.
func WithWorkers(n int) Option {
	return func(f *Factory) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithParserThreshold sets the minimum line count before a code file is
// split into functions and classes.
func WithParserThreshold(lines int) Option {
	return func(f *Factory) {
		if lines > 0 {
			f.threshold = lines
		}
	}
}

// WithNormalisers replaces the normaliser registry used for unstructured files.
func WithNormalisers(r driven.NormaliserRegistry) Option {
	return func(f *Factory) {
		if r != nil {
			f.normalisers = r
		}
	}
}

// NewFactory creates a loader factory rooted at root.
// Returns domain.ErrConfiguration when root is empty.
func NewFactory(root string, opts ...Option) (*Factory, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: repository root is empty", domain.ErrConfiguration)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", domain.ErrConfiguration, root, err)
	}

	f := &Factory{
		root:      abs,
		workers:   runtime.NumCPU(),
		threshold: domain.DefaultParserThreshold,
		constructors: map[domain.Category]loaderConstructor{
			domain.CategoryJava:                newCodeLoaderFor(domain.CategoryJava),
			domain.CategoryPython:              newCodeLoaderFor(domain.CategoryPython),
			domain.CategoryJavaScript:          newCodeLoaderFor(domain.CategoryJavaScript),
			domain.CategoryGeneralUnstructured: newUnstructuredLoader,
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.normalisers == nil {
		f.normalisers = normalisers.DefaultRegistry()
	}
	return f, nil
}

// FactoryFunc adapts NewFactory to driven.LoaderFactoryFunc with fixed options.
func FactoryFunc(opts ...Option) driven.LoaderFactoryFunc {
	return func(root string) (driven.LoaderFactory, error) {
		return NewFactory(root, opts...)
	}
}

// Root returns the absolute repository root.
func (f *Factory) Root() string {
	return f.root
}

// Loader returns the loader for a category.
func (f *Factory) Loader(category domain.Category) (driven.DocumentLoader, error) {
	construct, ok := f.constructors[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedCategory, category)
	}
	return construct(f), nil
}

// Categories returns the registered categories in load order.
func (f *Factory) Categories() []domain.Category {
	var out []domain.Category
	for _, c := range domain.AllCategories() {
		if _, ok := f.constructors[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
