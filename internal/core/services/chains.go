package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// contextSeparator joins retrieved chunks in the stuffed prompt.
const contextSeparator = "\n\n"

// queryRetriever answers a text query with ranked chunks.
type queryRetriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error)
}

// Ensure both paths implement the interface.
var (
	_ domain.ChatPath = (*DirectPath)(nil)
	_ domain.ChatPath = (*RAGPath)(nil)
)

// DirectPath answers from the model alone.
type DirectPath struct {
	llm      driven.LLMService
	template string
}

// NewDirectPath creates a direct path. An empty template uses the default.
func NewDirectPath(llm driven.LLMService, template string) *DirectPath {
	if strings.TrimSpace(template) == "" {
		template = domain.DefaultDirectChatPrompt
	}
	return &DirectPath{llm: llm, template: template}
}

// Ask generates an answer to question.
func (p *DirectPath) Ask(ctx context.Context, question string) (domain.Answer, error) {
	prompt := renderPrompt(p.template, question, "")
	text, err := p.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}
	return domain.Answer{Text: strings.TrimSpace(text)}, nil
}

// RAGPath retrieves chunks for the question and stuffs them into a
// single prompt.
type RAGPath struct {
	retriever queryRetriever
	llm       driven.LLMService
	template  string
	metrics   driven.ChatMetrics
}

// NewRAGPath creates a retrieval-augmented path. An empty template uses
// the default.
func NewRAGPath(retriever queryRetriever, llm driven.LLMService, template string) *RAGPath {
	if strings.TrimSpace(template) == "" {
		template = domain.DefaultRepoQAPrompt
	}
	return &RAGPath{retriever: retriever, llm: llm, template: template}
}

// SetMetrics records retrieval sizes. Optional.
func (p *RAGPath) SetMetrics(m driven.ChatMetrics) {
	p.metrics = m
}

// Ask retrieves context for question and generates a grounded answer.
// The answer's sources are the retrieved chunks in fused order.
func (p *RAGPath) Ask(ctx context.Context, question string) (domain.Answer, error) {
	chunks, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		return domain.Answer{}, err
	}
	if p.metrics != nil {
		p.metrics.ObserveRetrieval(len(chunks))
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Chunk.Content
	}
	prompt := renderPrompt(p.template, question, strings.Join(parts, contextSeparator))

	text, err := p.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}
	return domain.Answer{Text: strings.TrimSpace(text), Sources: chunks}, nil
}

// renderPrompt fills the {question} and {context} placeholders in one
// pass, so placeholder text inside the values is left alone.
func renderPrompt(template, question, context string) string {
	return strings.NewReplacer("{question}", question, "{context}", context).Replace(template)
}
