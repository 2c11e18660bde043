package domain

import (
	"errors"
	"fmt"
	"path/filepath"
)

const unknownDescription = "Unknown"

// Defaults applied when a setting is omitted.
const (
	DefaultIndexRoot       = "indexes"
	DefaultChunkSize       = 1000
	DefaultChunkOverlap    = 200
	DefaultRetrievalK      = 5
	DefaultParserThreshold = 10
	DefaultEmbedBatchSize  = 64
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize caps the number of texts per embedding request.
	BatchSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() || e.Model == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Model == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings sizes the splitters.
type ChunkingSettings struct {
	// ChunkSize is the target maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters carried across boundaries.
	ChunkOverlap int
}

// ProcessorConfig returns the settings in the generic map form consumed
// by the splitter registry.
func (c ChunkingSettings) ProcessorConfig() map[string]any {
	return map[string]any{
		"chunk_size": c.ChunkSize,
		"overlap":    c.ChunkOverlap,
	}
}

// LoaderSettings tunes document loading.
type LoaderSettings struct {
	// Workers bounds concurrent extraction of unstructured files.
	// Zero uses the number of CPUs.
	Workers int

	// ParserThreshold is the minimum line count before a code file is
	// split into functions and classes.
	ParserThreshold int
}

// RetrievalSettings tunes per-repository retrieval.
type RetrievalSettings struct {
	// K is the number of chunks each repository contributes per query.
	K int
}

// Settings holds the full application configuration.
type Settings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds generation provider settings.
	LLM LLMSettings

	// Repositories are the repositories to index and query.
	Repositories []RepositoryConfig

	// IndexRoot is the directory holding one index per repository.
	IndexRoot string

	// Chunking sizes the splitters.
	Chunking ChunkingSettings

	// Loader tunes document loading.
	Loader LoaderSettings

	// Retrieval tunes retrieval.
	Retrieval RetrievalSettings
}

// DefaultSettings returns settings with sensible defaults.
// Models and repositories are left empty and must be configured.
func DefaultSettings() Settings {
	return Settings{
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOllama,
			BatchSize: DefaultEmbedBatchSize,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
		},
		IndexRoot: DefaultIndexRoot,
		Chunking: ChunkingSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Loader: LoaderSettings{
			ParserThreshold: DefaultParserThreshold,
		},
		Retrieval: RetrievalSettings{
			K: DefaultRetrievalK,
		},
	}
}

// Repository returns the repository with the given name.
func (s *Settings) Repository(name string) (RepositoryConfig, bool) {
	for _, r := range s.Repositories {
		if r.Name == name {
			return r, true
		}
	}
	return RepositoryConfig{}, false
}

// RepositoryNames returns the configured repository names in order.
func (s *Settings) RepositoryNames() []string {
	names := make([]string, len(s.Repositories))
	for i, r := range s.Repositories {
		names[i] = r.Name
	}
	return names
}

// Validate checks the settings are complete. All problems are reported
// together, each wrapping ErrConfiguration.
func (s *Settings) Validate() error {
	var errs []error

	if s.LLM.Model == "" {
		errs = append(errs, fmt.Errorf("%w: models.llm is required", ErrConfiguration))
	}
	if s.Embedding.Model == "" {
		errs = append(errs, fmt.Errorf("%w: models.embedding is required", ErrConfiguration))
	}
	if !s.LLM.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("%w: unknown llm provider %q", ErrConfiguration, s.LLM.Provider))
	} else if s.LLM.Provider.RequiresAPIKey() && s.LLM.APIKey == "" {
		errs = append(errs, fmt.Errorf("%w: %s requires an API key", ErrConfiguration, s.LLM.Provider))
	}
	if !s.Embedding.Provider.SupportsEmbeddings() {
		errs = append(errs, fmt.Errorf("%w: provider %q cannot produce embeddings",
			ErrConfiguration, s.Embedding.Provider))
	} else if s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		errs = append(errs, fmt.Errorf("%w: %s requires an API key", ErrConfiguration, s.Embedding.Provider))
	}
	if s.IndexRoot == "" {
		errs = append(errs, fmt.Errorf("%w: index_root is required", ErrConfiguration))
	}
	if s.Chunking.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: chunking.chunk_size must be positive", ErrConfiguration))
	}
	if s.Chunking.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("%w: chunking.chunk_overlap must not be negative", ErrConfiguration))
	}
	if s.Retrieval.K <= 0 {
		errs = append(errs, fmt.Errorf("%w: retrieval.k must be positive", ErrConfiguration))
	}

	seen := make(map[string]bool, len(s.Repositories))
	for _, r := range s.Repositories {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[r.Name] {
			errs = append(errs, fmt.Errorf("%w: duplicate repository name %q", ErrConfiguration, r.Name))
		}
		seen[r.Name] = true
	}

	return errors.Join(errs...)
}

// IndexDir returns the absolute index root, resolved against base when relative.
func (s *Settings) IndexDir(base string) string {
	if filepath.IsAbs(s.IndexRoot) || base == "" {
		return s.IndexRoot
	}
	return filepath.Join(base, s.IndexRoot)
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
