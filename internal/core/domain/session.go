package domain

import (
	"context"
	"sync"
)

// SessionPhase is the lifecycle position of a chat session.
type SessionPhase int

// Session phases. DirectOnly and RAGEnabled are the two ready sub-states.
const (
	PhaseUninitialized SessionPhase = iota
	PhaseProfileSelected
	PhaseDirectOnly
	PhaseRAGEnabled
)

// String returns the phase name.
func (p SessionPhase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseProfileSelected:
		return "profile_selected"
	case PhaseDirectOnly:
		return "ready:direct_only"
	case PhaseRAGEnabled:
		return "ready:rag_enabled"
	default:
		return unknownDescription
	}
}

// IsReady returns true once the session can answer messages.
func (p SessionPhase) IsReady() bool {
	return p == PhaseDirectOnly || p == PhaseRAGEnabled
}

// ChatPath turns a question into an answer. The direct path ignores
// repositories; the retrieval-augmented path cites the chunks it used.
type ChatPath interface {
	Ask(ctx context.Context, question string) (Answer, error)
}

// Answer is the output of a chat path.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Sources are the chunks the answer was conditioned on, in fused rank order.
	Sources []RetrievedChunk
}

// SessionState holds the per-conversation paths built at session start.
// It is owned by the serving layer and passed to the router on every
// message; nothing in it is shared across sessions.
type SessionState struct {
	// ID identifies the session within its transport.
	ID string

	// Profile is the profile selected at start.
	Profile ChatProfile

	// Phase is the current lifecycle phase.
	Phase SessionPhase

	// Direct is the direct-chat path. Always built at start.
	Direct ChatPath

	// RAG is the retrieval-augmented path, nil unless Phase is PhaseRAGEnabled.
	RAG ChatPath

	// Repositories lists the indexes the RAG path was built over.
	Repositories []string

	mu sync.Mutex
}

// NewSessionState creates an uninitialised session.
func NewSessionState(id string) *SessionState {
	return &SessionState{ID: id, Phase: PhaseUninitialized}
}

// Lock serialises message handling within the session.
func (s *SessionState) Lock() { s.mu.Lock() }

// Unlock releases the session lock.
func (s *SessionState) Unlock() { s.mu.Unlock() }
