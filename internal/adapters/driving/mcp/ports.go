package mcp

import (
	"net/http"

	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

// Ports aggregates the driving ports and handlers the MCP server needs.
type Ports struct {
	// Chat addresses chat sessions by ID.
	Chat driving.ChatService

	// Metrics is served at /metrics in HTTP mode. Optional.
	Metrics http.Handler

	// Version is reported to clients during initialisation. Defaults to "dev".
	Version string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
