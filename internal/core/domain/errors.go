package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Pipeline Errors.

	// ErrConfiguration indicates missing or invalid settings.
	// Fatal at startup, never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedCategory indicates a loader was requested for an
	// unregistered category.
	ErrUnsupportedCategory = errors.New("unsupported category")

	// ErrLoaderFailure indicates a document or category could not be loaded.
	// Recovered locally by skipping and logging.
	ErrLoaderFailure = errors.New("loader failure")

	// ErrIndexNotFound indicates no persisted index exists for a repository.
	ErrIndexNotFound = errors.New("index not found")

	// ErrEmptyRetrieverSet indicates an ensemble was queried with no retrievers.
	// Distinguishes "no repositories loaded" from "no matches".
	ErrEmptyRetrieverSet = errors.New("empty retriever set")

	// ErrRetrievalFailure indicates a retriever failed during a query.
	ErrRetrievalFailure = errors.New("retrieval failure")

	// ErrGenerationFailure indicates the generation provider failed.
	ErrGenerationFailure = errors.New("generation failure")

	// ErrPathConstruction indicates a chat path was invoked that was never built.
	ErrPathConstruction = errors.New("chat path not configured")

	// ErrDimensionMismatch indicates a vector does not match the index dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
