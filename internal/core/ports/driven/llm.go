package driven

import "context"

// LLMService completes a single prompt. General Chat sends the templated
// question alone; Repo Q&A sends the retrieved chunks stuffed into the
// repo_qa template.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

// GenerateOptions are passed through to the provider. Zero values leave
// the provider default in place.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}
