package domain

import (
	"fmt"
	"strings"
)

// RepositoryConfig identifies a repository to index.
// Name is unique across the configuration and keys the repository's Index.
type RepositoryConfig struct {
	// Name is the index key.
	Name string `yaml:"name" toml:"name" json:"name"`

	// Path is the repository root on the local filesystem.
	Path string `yaml:"path" toml:"path" json:"path"`
}

// Validate checks the entry has a usable name and path.
func (r RepositoryConfig) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: repository entry has no name (path %q)", ErrConfiguration, r.Path)
	}
	if strings.ContainsAny(r.Name, `/\`) || r.Name == "." || r.Name == ".." {
		return fmt.Errorf("%w: repository name %q is not a valid index key", ErrConfiguration, r.Name)
	}
	if strings.TrimSpace(r.Path) == "" {
		return fmt.Errorf("%w: repository %q has no path", ErrConfiguration, r.Name)
	}
	return nil
}
