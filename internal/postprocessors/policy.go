package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure Policy implements the interface.
var _ driven.ChunkingPolicy = (*Policy)(nil)

// Policy routes each document to the splitter registered for its
// language tag, or to the generic splitter.
type Policy struct {
	byLanguage map[string]driven.Splitter
	fallback   driven.Splitter
}

// NewPolicy builds every splitter in the registry with cfg.
// The registry must contain the generic splitter.
func NewPolicy(r *Registry, cfg map[string]any) (*Policy, error) {
	if !r.Has(GenericSplitter) {
		return nil, fmt.Errorf("%w: splitter registry has no %q splitter", domain.ErrConfiguration, GenericSplitter)
	}

	p := &Policy{byLanguage: make(map[string]driven.Splitter)}
	for _, name := range r.Names() {
		s, err := r.Build(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("building splitter %s: %w", name, err)
		}
		if name == GenericSplitter {
			p.fallback = s
			continue
		}
		p.byLanguage[name] = s
	}
	return p, nil
}

// DefaultPolicy builds the policy from the built-in splitters.
func DefaultPolicy(settings domain.ChunkingSettings) (*Policy, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return NewPolicy(r, settings.ProcessorConfig())
}

// SplitterFor returns the splitter that would chunk doc.
func (p *Policy) SplitterFor(doc domain.Document) driven.Splitter {
	if s, ok := p.byLanguage[doc.Language()]; ok {
		return s
	}
	return p.fallback
}

// Split chunks doc with the splitter for its language.
func (p *Policy) Split(doc domain.Document) ([]domain.Chunk, error) {
	s := p.SplitterFor(doc)
	chunks, err := s.Split(doc)
	if err != nil {
		return nil, fmt.Errorf("splitter %s: %w", s.Name(), err)
	}
	return chunks, nil
}
