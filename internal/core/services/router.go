package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure Router implements the interface.
var _ driving.SessionRouter = (*Router)(nil)

// User-visible session messages.
const (
	msgLoadingIndexes    = "Loading repository indexes for **Repo Q&A** mode..."
	msgIndexNotFound     = "Warning: Index for repo '%s' not found. Please run `repochat build`."
	msgIndexUnreadable   = "Warning: Index for repo '%s' could not be loaded: %v"
	msgModelMismatch     = "Warning: Index for repo '%s' was built with '%s' but the embedding model is '%s'. Please run `repochat build`."
	msgReady             = "Ready to answer questions about %d repositories!"
	msgNoIndexes         = "No valid repository indexes were loaded."
	msgEmbeddingDown     = "The embedding service is unavailable (%v). Answering without repository context."
	msgGeneralChat       = "**General Chat** mode activated. I will not use your repositories as context."
	msgRAGNotConfigured  = "The RAG system is not configured. Please restart the chat in the 'Repo Q&A' profile."
	msgChatNotConfigured = "The chat system is not configured. Please restart the chat."
	msgAnswerFailed      = "Sorry, I could not answer that: %v"
)

// Router builds the chat paths of a session at start and dispatches
// each message to the path its profile selects.
type Router struct {
	llm          driven.LLMService
	embedder     driven.EmbeddingService
	store        driven.IndexStore
	prompts      driven.PromptStore
	repositories []domain.RepositoryConfig
	k            int
	metrics      driven.ChatMetrics
}

// NewRouter creates a session router over the configured repositories.
// The embedder and store may be nil, in which case Repo Q&A sessions
// start without a retrieval path.
func NewRouter(
	llm driven.LLMService,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	prompts driven.PromptStore,
	repositories []domain.RepositoryConfig,
	k int,
) *Router {
	return &Router{
		llm:          llm,
		embedder:     embedder,
		store:        store,
		prompts:      prompts,
		repositories: append([]domain.RepositoryConfig(nil), repositories...),
		k:            k,
	}
}

// SetMetrics records chat traffic. Optional.
func (r *Router) SetMetrics(m driven.ChatMetrics) {
	r.metrics = m
}

// Start selects profile for the session and builds its paths.
func (r *Router) Start(
	ctx context.Context, state *domain.SessionState, profile domain.ChatProfile, sink driven.MessageSink,
) error {
	if !profile.IsValid() {
		return fmt.Errorf("%w: unknown chat profile %d", domain.ErrInvalidInput, profile)
	}

	state.Lock()
	defer state.Unlock()

	state.Profile = profile
	state.Phase = domain.PhaseProfileSelected
	state.Direct = r.directPath()
	state.RAG = nil
	state.Repositories = nil

	if !profile.UsesRepositories() {
		state.Phase = domain.PhaseDirectOnly
		return send(ctx, sink, domain.ReplyInfo, msgGeneralChat)
	}

	if err := send(ctx, sink, domain.ReplyInfo, msgLoadingIndexes); err != nil {
		return err
	}

	retrievers, names, err := r.loadRetrievers(ctx, sink)
	if err != nil {
		return err
	}

	if len(retrievers) == 0 {
		state.Phase = domain.PhaseDirectOnly
		return send(ctx, sink, domain.ReplyWarning, msgNoIndexes)
	}

	rag := NewRAGPath(NewEnsembleRetriever(r.embedder, retrievers...), r.llm, r.template(driven.PromptRepoQA))
	if r.metrics != nil {
		rag.SetMetrics(r.metrics)
	}
	state.RAG = rag
	state.Repositories = names
	state.Phase = domain.PhaseRAGEnabled
	logger.Info("Session %s: retrieval over %s", state.ID, strings.Join(names, ", "))

	return send(ctx, sink, domain.ReplyInfo, fmt.Sprintf(msgReady, len(retrievers)))
}

// loadRetrievers loads the index of every configured repository,
// warning about each one that cannot be used. Only sink failures are
// returned as errors.
func (r *Router) loadRetrievers(
	ctx context.Context, sink driven.MessageSink,
) ([]driven.Retriever, []string, error) {
	if r.store == nil || r.embedder == nil {
		logger.Warn("Repo Q&A unavailable: index store or embedding service not configured")
		return nil, nil, nil
	}
	if err := r.embedder.Ping(ctx); err != nil {
		logger.Warn("Repo Q&A unavailable: %v", err)
		return nil, nil, send(ctx, sink, domain.ReplyWarning, fmt.Sprintf(msgEmbeddingDown, err))
	}

	var retrievers []driven.Retriever
	var names []string
	for _, repo := range r.repositories {
		idx, err := r.store.Load(ctx, repo.Name)
		var warning string
		switch {
		case errors.Is(err, domain.ErrIndexNotFound):
			warning = fmt.Sprintf(msgIndexNotFound, repo.Name)
		case err != nil:
			warning = fmt.Sprintf(msgIndexUnreadable, repo.Name, err)
		case idx.Model != "" && idx.Model != r.embedder.ModelName():
			warning = fmt.Sprintf(msgModelMismatch, repo.Name, idx.Model, r.embedder.ModelName())
		}
		if warning != "" {
			if err := send(ctx, sink, domain.ReplyWarning, warning); err != nil {
				return nil, nil, err
			}
			continue
		}

		logger.Debug("Loaded index %s (%d chunks)", repo.Name, idx.Len())
		retrievers = append(retrievers, NewIndexRetriever(idx, r.k))
		names = append(names, repo.Name)
	}
	return retrievers, names, nil
}

// Handle answers one message. Messages of a session are handled one at a time.
func (r *Router) Handle(ctx context.Context, state *domain.SessionState, text string, sink driven.MessageSink) error {
	state.Lock()
	defer state.Unlock()

	question := strings.TrimSpace(text)
	if question == "" {
		return nil
	}

	var path domain.ChatPath
	var missing string
	switch state.Profile {
	case domain.ProfileRepoQA:
		path, missing = state.RAG, msgRAGNotConfigured
	default:
		path, missing = state.Direct, msgChatNotConfigured
	}

	reply := r.answer(ctx, path, missing, question)
	if r.metrics != nil {
		r.metrics.ObserveMessage(state.Profile, reply.Kind)
	}
	return sink.Send(ctx, reply)
}

// answer runs path and converts the outcome into a reply.
func (r *Router) answer(ctx context.Context, path domain.ChatPath, missing, question string) domain.Reply {
	if path == nil {
		logger.Debug("%v: %s", domain.ErrPathConstruction, missing)
		return domain.Reply{Kind: domain.ReplyError, Text: missing}
	}

	ans, err := path.Ask(ctx, question)
	if err != nil {
		logger.Warn("Answer failed: %v", err)
		return domain.Reply{Kind: domain.ReplyError, Text: fmt.Sprintf(msgAnswerFailed, err)}
	}

	return domain.Reply{
		Kind:      domain.ReplyAnswer,
		Text:      ans.Text,
		Citations: citations(ans.Sources),
	}
}

// citations labels each source chunk in order, starting at 1.
// Chunks from the same file are listed separately.
func citations(sources []domain.RetrievedChunk) []domain.Citation {
	if len(sources) == 0 {
		return nil
	}
	out := make([]domain.Citation, len(sources))
	for i, rc := range sources {
		out[i] = domain.Citation{
			Label:      fmt.Sprintf("Source %d: %s", i+1, filepath.Base(rc.Chunk.Source())),
			Source:     rc.Chunk.Source(),
			Repository: rc.Repository,
			Content:    rc.Chunk.Content,
		}
	}
	return out
}

// directPath builds the direct path, or nil when no model is configured.
func (r *Router) directPath() domain.ChatPath {
	if r.llm == nil {
		return nil
	}
	return NewDirectPath(r.llm, r.template(driven.PromptDirectChat))
}

// template loads a prompt, falling back to the built-in default.
func (r *Router) template(name string) string {
	if r.prompts == nil {
		return ""
	}
	t, err := r.prompts.Load(name)
	if err != nil {
		logger.Warn("Prompt %s unavailable, using default: %v", name, err)
		return ""
	}
	return t
}

func send(ctx context.Context, sink driven.MessageSink, kind domain.ReplyKind, text string) error {
	return sink.Send(ctx, domain.Reply{Kind: kind, Text: text})
}
