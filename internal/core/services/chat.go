package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService keeps sessions by ID and collects the replies of each call.
type ChatService struct {
	router       driving.SessionRouter
	sessions     driven.SessionStore
	store        driven.IndexStore
	repositories []domain.RepositoryConfig
	newID        func() string
}

// NewChatService creates a chat service. The store may be nil, in which
// case every repository is reported as not indexed.
func NewChatService(
	router driving.SessionRouter,
	sessions driven.SessionStore,
	store driven.IndexStore,
	repositories []domain.RepositoryConfig,
) *ChatService {
	return &ChatService{
		router:       router,
		sessions:     sessions,
		store:        store,
		repositories: append([]domain.RepositoryConfig(nil), repositories...),
		newID:        uuid.NewString,
	}
}

// StartSession creates and stores a new session.
func (s *ChatService) StartSession(ctx context.Context, profile domain.ChatProfile) (string, []domain.Reply, error) {
	state := domain.NewSessionState(s.newID())

	var out collector
	if err := s.router.Start(ctx, state, profile, &out); err != nil {
		return "", nil, fmt.Errorf("start session: %w", err)
	}
	if err := s.sessions.Put(ctx, state); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}
	return state.ID, out.replies(), nil
}

// Send answers one message in a stored session.
func (s *ChatService) Send(ctx context.Context, sessionID, text string) ([]domain.Reply, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	var out collector
	if err := s.router.Handle(ctx, state, text, &out); err != nil {
		return nil, err
	}
	return out.replies(), nil
}

// EndSession discards a session.
func (s *ChatService) EndSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Repositories reports every configured repository with its index summary.
func (s *ChatService) Repositories(ctx context.Context) ([]driving.RepositoryStatus, error) {
	infos := make(map[string]domain.IndexInfo)
	if s.store != nil {
		list, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list indexes: %w", err)
		}
		for _, info := range list {
			infos[info.Name] = info
		}
	}

	out := make([]driving.RepositoryStatus, 0, len(s.repositories))
	for _, repo := range s.repositories {
		status := driving.RepositoryStatus{Name: repo.Name, Path: repo.Path}
		if info, ok := infos[repo.Name]; ok {
			status.Indexed = true
			status.Index = &info
		}
		out = append(out, status)
	}
	return out, nil
}

// collector is a MessageSink that buffers replies.
type collector struct {
	mu  sync.Mutex
	out []domain.Reply
}

func (c *collector) Send(_ context.Context, reply domain.Reply) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = append(c.out, reply)
	return nil
}

func (c *collector) replies() []domain.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Reply(nil), c.out...)
}
