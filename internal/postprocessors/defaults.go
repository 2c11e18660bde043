package postprocessors

import (
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/postprocessors/chunker"
)

// GenericSplitter is the registry name of the prose splitter used for
// documents without a language tag.
const GenericSplitter = "recursive"

// RegisterDefaults registers all built-in splitters with the registry:
// the generic splitter plus one per code category, keyed by its tag.
func RegisterDefaults(r *Registry) {
	r.Register(GenericSplitter, buildSplitter(domain.CategoryGeneralUnstructured))
	for _, c := range domain.AllCategories() {
		if c.IsCode() {
			r.Register(c.String(), buildSplitter(c))
		}
	}
}

// buildSplitter returns a builder for a category's splitter.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap or chunk_overlap (int): Overlapping characters between chunks (default: 200)
func buildSplitter(c domain.Category) BuilderFunc {
	return func(cfg map[string]any) (driven.Splitter, error) {
		var opts []chunker.Option

		if size, ok := getIntFromConfig(cfg, "chunk_size"); ok && size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		for _, key := range []string{"overlap", "chunk_overlap"} {
			if overlap, ok := getIntFromConfig(cfg, key); ok && overlap >= 0 {
				opts = append(opts, chunker.WithOverlap(overlap))
				break
			}
		}

		if c.IsCode() {
			return chunker.ForLanguage(c, opts...), nil
		}
		return chunker.New(opts...), nil
	}
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
