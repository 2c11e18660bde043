package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptTemplate is a built-in template and the placeholders an override
// must keep.
type promptTemplate struct {
	text     string
	requires []string
}

var builtinPrompts = map[string]promptTemplate{
	driven.PromptDirectChat: {text: domain.DefaultDirectChatPrompt, requires: []string{"{question}"}},
	driven.PromptRepoQA:     {text: domain.DefaultRepoQAPrompt, requires: []string{"{context}", "{question}"}},
}

const promptsReadme = "# repochat prompts\n\n" +
	"Templates used by the two chat profiles.\n\n" +
	"- `direct_chat.txt`: General Chat. Must contain `{question}`.\n" +
	"- `repo_qa.txt`: Repo Q&A. Must contain `{context}` and `{question}`.\n\n" +
	"Edits take effect when the next chat session starts. A file that is\n" +
	"missing, empty or lacks a placeholder is ignored and the built-in\n" +
	"template is used instead. Delete a file to restore the default.\n"

// PromptStore serves prompt templates from <dir>/<name>.txt, falling back
// to the built-in templates. The directory is seeded on first Load, never
// in the constructor.
type PromptStore struct {
	dir string

	seed    sync.Once
	seedErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// An empty dir uses ~/.repochat/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".repochat", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the template for name. Unknown names without a file on disk
// return domain.ErrNotFound.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(func() { s.seedErr = s.seedDir() })
	if s.seedErr != nil {
		logger.Debug("Prompt directory unavailable: %v", s.seedErr)
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	prompt, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[name]; ok {
		return existing, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// resolve reads the override for name and checks it against the built-in
// template's placeholders.
func (s *PromptStore) resolve(name string) (string, error) {
	builtin, known := builtinPrompts[name]

	data, err := os.ReadFile(s.path(name))
	switch {
	case err == nil:
	case known:
		return builtin.text, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	text := strings.TrimSpace(string(data))
	if !known {
		return text, nil
	}
	if text == "" {
		logger.Warn("Prompt %s is empty, using the built-in template", s.path(name))
		return builtin.text, nil
	}
	for _, p := range builtin.requires {
		if !strings.Contains(text, p) {
			logger.Warn("Prompt %s has no %s placeholder, using the built-in template", s.path(name), p)
			return builtin.text, nil
		}
	}
	return text, nil
}

// seedDir creates the directory, the built-in template files and a README.
// Existing files are left untouched.
func (s *PromptStore) seedDir() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	files := map[string]string{"README.md": promptsReadme}
	for name, p := range builtinPrompts {
		files[name+".txt"] = p.text
	}

	var errs []error
	for name, content := range files {
		if err := writeIfMissing(filepath.Join(s.dir, name), content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
