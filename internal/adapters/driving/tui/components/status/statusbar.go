// Package status renders the one-line chat status bar.
package status

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/styles"
)

// State is the session phase shown on the left of the bar.
type State string

const (
	StateStarting State = "starting"
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

var labels = map[State]string{
	StateStarting: "Starting...",
	StateReady:    "Ready",
	StateThinking: "Thinking...",
}

// Bar shows the session profile, chat mode and state on the left and key
// hints on the right. It holds no tea state; the chat view drives it with
// the Set methods.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	profile string
	mode    string
	width   int
}

// NewBar creates a status bar. Nil arguments fall back to the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left := s.session()
	right := s.styles.Muted.Render(keymap.Hints(" | ", s.keymap.ChatHelp()...))
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) session() string {
	var parts []string
	if s.profile != "" {
		parts = append(parts, s.styles.Normal.Render(s.profile))
	}
	if s.mode != "" {
		parts = append(parts, s.styles.Muted.Render(s.mode))
	}

	if s.state == StateError {
		text := "Error"
		if s.message != "" {
			text += ": " + s.message
		}
		parts = append(parts, s.styles.Error.Render(text))
	} else if label, ok := labels[s.state]; ok {
		parts = append(parts, s.styles.Muted.Render(label))
	}
	return strings.Join(parts, s.styles.Muted.Render(" · "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) { s.state = state }

// State returns the current state.
func (s *Bar) State() State { return s.state }

// SetMessage sets the error text shown in StateError.
func (s *Bar) SetMessage(message string) { s.message = message }

// Message returns the error text.
func (s *Bar) Message() string { return s.message }

// SetSession sets the profile name and chat mode.
func (s *Bar) SetSession(profile, mode string) {
	s.profile = profile
	s.mode = mode
}

// SetWidth sets the bar width.
func (s *Bar) SetWidth(width int) { s.width = width }

// Width returns the bar width.
func (s *Bar) Width() int { return s.width }

// Clear drops the session and returns to StateReady.
func (s *Bar) Clear() {
	*s = Bar{styles: s.styles, keymap: s.keymap, state: StateReady, width: s.width}
}
