// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/repochat/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/repochat/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/repochat/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/repochat/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/repochat/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint is appended to provider errors shown to the user.
const fixHint = "check the models section of your config file"

// Services holds the AI services a command needs.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
}

// Close releases all resources held by the services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
}

// Need selects which services Init creates.
type Need int

// Service selections.
const (
	NeedEmbedding Need = 1 << iota
	NeedLLM

	// DeferEmbeddingPing creates the embedding service without pinging
	// it. The session router pings it when Repo Q&A starts.
	DeferEmbeddingPing
)

// Init creates and validates the selected services. Every requested
// service is pinged before it is returned, so long operations fail
// up front when a provider is unreachable. Failures are joined.
func Init(ctx context.Context, settings domain.Settings, need Need) (*Services, error) {
	out := &Services{}
	var errs []error

	if need&NeedEmbedding != 0 {
		var svc driven.EmbeddingService
		var err error
		if need&DeferEmbeddingPing != 0 {
			svc, err = createEmbeddingService(&settings.Embedding)
		} else {
			svc, err = CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
		}
		if err != nil {
			errs = append(errs, err)
		}
		out.Embedding = svc
	}
	if need&NeedLLM != 0 {
		svc, err := CreateAndValidateLLMService(ctx, &settings.LLM)
		if err != nil {
			errs = append(errs, err)
		}
		out.LLM = svc
	}

	if err := errors.Join(errs...); err != nil {
		out.Close()
		return nil, err
	}
	return out, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := createEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w); %s",
			domain.ErrEmbeddingUnavailable, settings.Provider, err, fixHint)
	}
	return svc, nil
}

func createEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider is not configured; %s",
			domain.ErrEmbeddingUnavailable, fixHint)
	}
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w; %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: LLM provider is not configured; %s", domain.ErrLLMUnavailable, fixHint)
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w; %s", domain.ErrLLMUnavailable, err, fixHint)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w); %s",
			domain.ErrLLMUnavailable, settings.Provider, err, fixHint)
	}
	return svc, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateEmbeddingService creates the embedding service for the configured provider.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service for the configured provider.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
		BatchSize:  settings.BatchSize,
	})
}

func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
