package driven

import "context"

// EmbeddingService turns text into vectors. The model name is recorded
// with each index; a session over an index built with another model gets
// a warning notice.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping makes the cheapest request the provider offers.
	Ping(ctx context.Context) error
	Close() error
}
