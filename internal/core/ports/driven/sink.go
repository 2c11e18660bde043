package driven

import (
	"context"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// MessageSink delivers replies to a chat transport for display.
type MessageSink interface {
	Send(ctx context.Context, reply domain.Reply) error
}

// MessageSinkFunc adapts a function to MessageSink.
type MessageSinkFunc func(ctx context.Context, reply domain.Reply) error

// Send calls f.
func (f MessageSinkFunc) Send(ctx context.Context, reply domain.Reply) error {
	return f(ctx, reply)
}

// SessionStore keeps session state for transports that address sessions by ID.
// Stored states are process-local and never shared between sessions.
type SessionStore interface {
	// Get returns the session for id, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.SessionState, error)

	// Put stores the session under its ID.
	Put(ctx context.Context, state *domain.SessionState) error

	// Delete discards the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}
