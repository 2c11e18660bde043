// Package keymap holds the TUI key bindings and renders their hints.
package keymap

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is the set of bindings shared by the menu and chat views.
type KeyMap struct {
	Quit       key.Binding
	Help       key.Binding
	Back       key.Binding
	Send       key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:       bind("ctrl+c", "quit", "ctrl+c"),
		Help:       bind("?", "help", "?"),
		Back:       bind("esc", "profiles", "esc"),
		Send:       bind("enter", "send", "enter"),
		Up:         bind("↑/k", "up", "up", "k"),
		Down:       bind("↓/j", "down", "down", "j"),
		Select:     bind("enter", "select", "enter"),
		ScrollUp:   bind("pgup", "scroll up", "pgup"),
		ScrollDown: bind("pgdn", "scroll down", "pgdown"),
	}
}

// ChatHelp returns the bindings shown in the chat status bar.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Send, k.ScrollUp, k.Back, k.Quit}
}

// MenuHelp returns the bindings shown under the profile menu.
func (k *KeyMap) MenuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Quit}
}

// FullHelp groups every binding for the help screen: menu, chat, global.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Send, k.ScrollUp, k.ScrollDown},
		{k.Back, k.Help, k.Quit},
	}
}

// Hints renders bindings as "key: desc" pairs joined by sep.
func Hints(sep string, bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, sep)
}
