// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Generates vector embeddings for chunks and queries
//   - LLMService: Generates answers
//   - LoaderFactory / DocumentLoader: Produce documents per category
//   - NormaliserRegistry: Extracts text from unstructured files
//   - ChunkingPolicy / Splitter: Divide documents into chunks
//   - IndexStore: Per-repository index persistence
//   - PromptStore: Prompt templates
//   - MessageSink: Chat transport output
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SessionStore: Only needed by transports that address sessions by ID
//   - BuildMetrics / ChatMetrics: Metrics are skipped when nil
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, loader, or normaliser package
package driven
