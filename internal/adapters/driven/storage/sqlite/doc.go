// Package sqlite provides the SQLite-backed index store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Layout
//
// Each repository index is a self-contained database file
// <index_root>/<name>.db with a meta table and a chunks table. Vectors
// are stored as little-endian float32 blobs.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Atomic replacement
//
// Save writes a complete database to a temporary file in the same
// directory, syncs it and renames it over the previous index. Readers
// therefore see either the old index or the new one.
package sqlite
