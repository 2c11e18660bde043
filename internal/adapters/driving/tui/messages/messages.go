// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/repochat/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the profile selection menu.
	ViewMenu ViewType = iota
	// ViewChat is the chat transcript and input.
	ViewChat
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ProfileSelected is sent when a chat profile is chosen from the menu.
type ProfileSelected struct {
	Profile domain.ChatProfile
}

// SessionStarted carries the notices produced while State started.
type SessionStarted struct {
	State   *domain.SessionState
	Replies []domain.Reply
	Err     error
}

// RepliesReceived carries the replies to one user message in State.
type RepliesReceived struct {
	State   *domain.SessionState
	Replies []domain.Reply
	Err     error
}

// ErrorOccurred is sent when an operation fails.
type ErrorOccurred struct {
	Err error
}

// Quit is sent to exit the application.
type Quit struct{}
