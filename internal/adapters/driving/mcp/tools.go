package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/repochat/internal/core/domain"
)

// StartSessionInput is the input schema for the start_session tool.
type StartSessionInput struct {
	Profile string `json:"profile,omitempty" jsonschema:"chat profile: 'Repo Q&A' (default) or 'General Chat'"`
}

// StartSessionOutput is the output schema for the start_session tool.
type StartSessionOutput struct {
	SessionID string        `json:"session_id"`
	Profile   string        `json:"profile"`
	Notices   []ReplyOutput `json:"notices"`
}

// SendMessageInput is the input schema for the send_message tool.
type SendMessageInput struct {
	SessionID string `json:"session_id" jsonschema:"the session returned by start_session"`
	Message   string `json:"message" jsonschema:"the question to ask"`
}

// SendMessageOutput is the output schema for the send_message tool.
type SendMessageOutput struct {
	Replies []ReplyOutput `json:"replies"`
}

// EndSessionInput is the input schema for the end_session tool.
type EndSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"the session to discard"`
}

// EndSessionOutput is the output schema for the end_session tool.
type EndSessionOutput struct {
	Ended bool `json:"ended"`
}

// ListRepositoriesInput is the (empty) input schema for list_repositories.
type ListRepositoriesInput struct{}

// ListRepositoriesOutput is the output schema for list_repositories.
type ListRepositoriesOutput struct {
	Repositories []RepositoryOutput `json:"repositories"`
	Count        int                `json:"count"`
}

// ReplyOutput is a single chat reply.
type ReplyOutput struct {
	Kind      string           `json:"kind"`
	Text      string           `json:"text"`
	Citations []CitationOutput `json:"citations,omitempty"`
}

// CitationOutput is a source element attached to an answer.
type CitationOutput struct {
	Label      string `json:"label"`
	Source     string `json:"source"`
	Repository string `json:"repository"`
	Content    string `json:"content"`
}

// RepositoryOutput describes a configured repository.
type RepositoryOutput struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Indexed    bool   `json:"indexed"`
	Chunks     int    `json:"chunks,omitempty"`
	Model      string `json:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
	BuiltAt    string `json:"built_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_session",
		Description: "Start a chat session over the indexed repositories",
	}, s.handleStartSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "send_message",
		Description: "Ask a question in an existing chat session",
	}, s.handleSendMessage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "end_session",
		Description: "Discard a chat session",
	}, s.handleEndSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_repositories",
		Description: "List configured repositories and whether each is indexed",
	}, s.handleListRepositories)
}

func (s *Server) handleStartSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StartSessionInput,
) (*mcp.CallToolResult, StartSessionOutput, error) {
	profile := domain.ProfileRepoQA
	if input.Profile != "" {
		p, err := domain.ParseChatProfile(input.Profile)
		if err != nil {
			return nil, StartSessionOutput{}, err
		}
		profile = p
	}

	id, notices, err := s.ports.Chat.StartSession(ctx, profile)
	if err != nil {
		return nil, StartSessionOutput{}, err
	}

	return nil, StartSessionOutput{
		SessionID: id,
		Profile:   profile.String(),
		Notices:   toReplyOutputs(notices),
	}, nil
}

func (s *Server) handleSendMessage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendMessageInput,
) (*mcp.CallToolResult, SendMessageOutput, error) {
	if input.SessionID == "" {
		return nil, SendMessageOutput{}, fmt.Errorf("%w: session_id is required", domain.ErrInvalidInput)
	}

	replies, err := s.ports.Chat.Send(ctx, input.SessionID, input.Message)
	if err != nil {
		return nil, SendMessageOutput{}, err
	}
	return nil, SendMessageOutput{Replies: toReplyOutputs(replies)}, nil
}

func (s *Server) handleEndSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EndSessionInput,
) (*mcp.CallToolResult, EndSessionOutput, error) {
	if err := s.ports.Chat.EndSession(ctx, input.SessionID); err != nil {
		return nil, EndSessionOutput{}, err
	}
	return nil, EndSessionOutput{Ended: true}, nil
}

func (s *Server) handleListRepositories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListRepositoriesInput,
) (*mcp.CallToolResult, ListRepositoriesOutput, error) {
	repos, err := s.repositories(ctx)
	if err != nil {
		return nil, ListRepositoriesOutput{}, err
	}
	return nil, ListRepositoriesOutput{Repositories: repos, Count: len(repos)}, nil
}

func (s *Server) repositories(ctx context.Context) ([]RepositoryOutput, error) {
	statuses, err := s.ports.Chat.Repositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	out := make([]RepositoryOutput, len(statuses))
	for i, st := range statuses {
		out[i] = RepositoryOutput{
			Name:    st.Name,
			Path:    st.Path,
			Indexed: st.Indexed,
		}
		if st.Index != nil {
			out[i].Chunks = st.Index.Chunks
			out[i].Model = st.Index.Model
			out[i].Dimensions = st.Index.Dimensions
			out[i].BuiltAt = st.Index.CreatedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
	}
	return out, nil
}

func toReplyOutputs(replies []domain.Reply) []ReplyOutput {
	out := make([]ReplyOutput, len(replies))
	for i, r := range replies {
		out[i] = ReplyOutput{Kind: r.Kind.String(), Text: r.Text}
		for _, c := range r.Citations {
			out[i].Citations = append(out[i].Citations, CitationOutput{
				Label:      c.Label,
				Source:     c.Source,
				Repository: c.Repository,
				Content:    c.Content,
			})
		}
	}
	return out
}
