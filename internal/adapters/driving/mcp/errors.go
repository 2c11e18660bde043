// Package mcp provides an MCP (Model Context Protocol) server adapter for repochat.
// It lets AI assistants open chat sessions over the indexed repositories.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
