// Package tui provides an interactive terminal chat interface for repochat.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Router starts sessions and answers messages.
	Router driving.SessionRouter
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Router == nil {
		return ErrMissingRouter
	}
	return nil
}
