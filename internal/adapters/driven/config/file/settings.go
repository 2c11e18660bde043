package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsProvider = (*SettingsStore)(nil)

// Environment variables holding provider API keys.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// configFileNames are tried in order in each search directory.
var configFileNames = []string{"config.yml", "config.yaml", "config.toml"}

// fileConfig is the on-disk layout shared by the YAML and TOML formats.
type fileConfig struct {
	Models       modelsSection             `yaml:"models" toml:"models"`
	Repositories []domain.RepositoryConfig `yaml:"repositories" toml:"repositories"`
	IndexRoot    string                    `yaml:"index_root" toml:"index_root"`
	Chunking     chunkingSection           `yaml:"chunking" toml:"chunking"`
	Retrieval    retrievalSection          `yaml:"retrieval" toml:"retrieval"`
	Loader       loaderSection             `yaml:"loader" toml:"loader"`
}

type modelsSection struct {
	LLM               string `yaml:"llm" toml:"llm"`
	Embedding         string `yaml:"embedding" toml:"embedding"`
	Provider          string `yaml:"provider" toml:"provider"`
	EmbeddingProvider string `yaml:"embedding_provider" toml:"embedding_provider"`
	BaseURL           string `yaml:"base_url" toml:"base_url"`
	EmbeddingBaseURL  string `yaml:"embedding_base_url" toml:"embedding_base_url"`
	EmbedBatchSize    int    `yaml:"embed_batch_size" toml:"embed_batch_size"`
}

type chunkingSection struct {
	ChunkSize    *int `yaml:"chunk_size" toml:"chunk_size"`
	ChunkOverlap *int `yaml:"chunk_overlap" toml:"chunk_overlap"`
}

type retrievalSection struct {
	K int `yaml:"k" toml:"k"`
}

type loaderSection struct {
	Workers         int `yaml:"workers" toml:"workers"`
	ParserThreshold int `yaml:"parser_threshold" toml:"parser_threshold"`
}

// SettingsStore holds settings loaded from a config file.
type SettingsStore struct {
	path     string
	settings domain.Settings
}

// Locate returns the config file to use: explicit when set, otherwise
// the first config file found in the working directory, then in
// ~/.repochat.
func Locate(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: config file %s: %w", domain.ErrConfiguration, explicit, err)
		}
		return explicit, nil
	}

	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".repochat"))
	}
	for _, dir := range dirs {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no config file found (looked for %s in ./ and ~/.repochat/)",
		domain.ErrConfiguration, strings.Join(configFileNames, ", "))
}

// Load reads and validates the config file at path. API keys are read
// through getenv. Relative repository paths and the index root are
// resolved against the config file's directory.
func Load(path string, getenv func(string) string) (*SettingsStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %w", domain.ErrConfiguration, err)
	}

	var cfg fileConfig
	if err := decode(path, data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrConfiguration, filepath.Base(path), err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	settings := cfg.toSettings(filepath.Dir(abs), getenv)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &SettingsStore{path: abs, settings: settings}, nil
}

// Settings returns the loaded settings.
func (s *SettingsStore) Settings() domain.Settings {
	return s.settings
}

// Path returns the file the settings were read from.
func (s *SettingsStore) Path() string {
	return s.path
}

// decode parses data as TOML or YAML by file extension. Unknown keys
// are rejected so typos surface at startup.
func decode(path string, data []byte, cfg *fileConfig) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c fileConfig) toSettings(base string, getenv func(string) string) domain.Settings {
	s := domain.DefaultSettings()

	if c.Models.Provider != "" {
		s.LLM.Provider = domain.AIProvider(strings.ToLower(c.Models.Provider))
	}
	s.Embedding.Provider = s.LLM.Provider
	if c.Models.EmbeddingProvider != "" {
		s.Embedding.Provider = domain.AIProvider(strings.ToLower(c.Models.EmbeddingProvider))
	}
	s.LLM.Model = c.Models.LLM
	s.Embedding.Model = c.Models.Embedding
	s.LLM.BaseURL = c.Models.BaseURL
	s.Embedding.BaseURL = c.Models.BaseURL
	if c.Models.EmbeddingBaseURL != "" {
		s.Embedding.BaseURL = c.Models.EmbeddingBaseURL
	}
	if c.Models.EmbedBatchSize > 0 {
		s.Embedding.BatchSize = c.Models.EmbedBatchSize
	}
	s.LLM.APIKey = apiKey(s.LLM.Provider, getenv)
	s.Embedding.APIKey = apiKey(s.Embedding.Provider, getenv)

	if c.IndexRoot != "" {
		s.IndexRoot = c.IndexRoot
	}
	s.IndexRoot = s.IndexDir(base)

	if c.Chunking.ChunkSize != nil {
		s.Chunking.ChunkSize = *c.Chunking.ChunkSize
	}
	if c.Chunking.ChunkOverlap != nil {
		s.Chunking.ChunkOverlap = *c.Chunking.ChunkOverlap
	}
	if c.Retrieval.K != 0 {
		s.Retrieval.K = c.Retrieval.K
	}
	if c.Loader.Workers > 0 {
		s.Loader.Workers = c.Loader.Workers
	}
	if c.Loader.ParserThreshold > 0 {
		s.Loader.ParserThreshold = c.Loader.ParserThreshold
	}

	s.Repositories = make([]domain.RepositoryConfig, len(c.Repositories))
	for i, r := range c.Repositories {
		r.Name = strings.TrimSpace(r.Name)
		if r.Path != "" {
			r.Path = expandPath(r.Path, base)
		}
		s.Repositories[i] = r
	}
	return s
}

// apiKey returns the environment key for providers that need one.
func apiKey(p domain.AIProvider, getenv func(string) string) string {
	switch p {
	case domain.AIProviderOpenAI:
		return getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return getenv(EnvAnthropicKey)
	default:
		return ""
	}
}

// expandPath resolves ~ and relative paths.
func expandPath(path, base string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}

// exampleConfig is written by WriteExample.
const exampleConfig = `# repochat configuration
models:
  llm: llama3.2
  embedding: nomic-embed-text
  provider: ollama            # ollama | openai | anthropic
  # embedding_provider: ollama  # defaults to provider; anthropic has no embeddings
  # base_url: http://localhost:11434

repositories:
  - name: example
    path: .

index_root: indexes

chunking:
  chunk_size: 1000
  chunk_overlap: 200

retrieval:
  k: 5
`

// WriteExample writes a starter config file to path. It refuses to
// overwrite an existing file.
func WriteExample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(exampleConfig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
