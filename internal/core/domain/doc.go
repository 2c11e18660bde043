// Package domain defines the core business entities for repochat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A unit of loaded text with source metadata
//   - Chunk: A bounded slice of a Document, the unit of retrieval
//   - Category: The content categories a repository is loaded by
//   - RepositoryConfig: A configured repository to index
//   - Index: The persisted vectors for one repository
//   - ChatProfile and SessionState: Per-conversation routing state
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
