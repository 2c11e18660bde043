package driving

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// SessionRouter builds the chat paths of a session and dispatches
// each message to the right one.
type SessionRouter interface {
	// Start selects the profile and builds the session's paths.
	// User-visible notices (missing indexes, mode banners) go to sink.
	// Returns an error only if the sink fails or the profile is invalid.
	Start(ctx context.Context, state *domain.SessionState, profile domain.ChatProfile, sink driven.MessageSink) error

	// Handle answers one message. Retrieval and generation failures are
	// sent to sink as error replies and do not end the session.
	// Returns an error only if the sink fails.
	Handle(ctx context.Context, state *domain.SessionState, text string, sink driven.MessageSink) error
}

// ChatService addresses sessions by ID for transports that cannot hold
// session state themselves (MCP, one-shot CLI).
type ChatService interface {
	// StartSession creates a session with the given profile and returns
	// its ID along with the start notices.
	StartSession(ctx context.Context, profile domain.ChatProfile) (string, []domain.Reply, error)

	// Send answers one message in an existing session.
	// Returns domain.ErrNotFound for unknown sessions.
	Send(ctx context.Context, sessionID, text string) ([]domain.Reply, error)

	// EndSession discards a session.
	EndSession(ctx context.Context, sessionID string) error

	// Repositories returns the configured repositories and whether each
	// has a persisted index.
	Repositories(ctx context.Context) ([]RepositoryStatus, error)
}

// RepositoryStatus describes a configured repository.
type RepositoryStatus struct {
	Name    string
	Path    string
	Indexed bool
	Index   *domain.IndexInfo
}
