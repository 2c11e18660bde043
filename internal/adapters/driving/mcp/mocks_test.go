package mcp

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	startProfile domain.ChatProfile
	sessionID    string
	notices      []domain.Reply
	replies      []domain.Reply
	repos        []driving.RepositoryStatus
	ended        []string
	sent         []string
	err          error
}

func (m *mockChatService) StartSession(_ context.Context, profile domain.ChatProfile) (string, []domain.Reply, error) {
	m.startProfile = profile
	return m.sessionID, m.notices, m.err
}

func (m *mockChatService) Send(_ context.Context, sessionID, text string) ([]domain.Reply, error) {
	if m.err != nil {
		return nil, m.err
	}
	if sessionID != m.sessionID {
		return nil, domain.ErrNotFound
	}
	m.sent = append(m.sent, text)
	return m.replies, nil
}

func (m *mockChatService) EndSession(_ context.Context, sessionID string) error {
	m.ended = append(m.ended, sessionID)
	return m.err
}

func (m *mockChatService) Repositories(_ context.Context) ([]driving.RepositoryStatus, error) {
	return m.repos, m.err
}
