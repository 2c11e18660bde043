// Package menu lists the chat profiles and lets the user pick one.
package menu

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repochat/internal/core/domain"
)

// Item is one menu entry. A valid Profile starts a session, Quit exits,
// otherwise the app switches to View.
type Item struct {
	Label       string
	Description string
	Profile     domain.ChatProfile
	View        messages.ViewType
	Quit        bool
}

// cmd returns the command the item triggers when selected.
func (i Item) cmd() tea.Cmd {
	switch {
	case i.Quit:
		return tea.Quit
	case i.Profile.IsValid():
		return func() tea.Msg { return messages.ProfileSelected{Profile: i.Profile} }
	default:
		return func() tea.Msg { return messages.ViewChanged{View: i.View} }
	}
}

// View is the profile menu.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	quit     key.Binding
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView lists every chat profile followed by Help and Quit.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	profiles := domain.AllChatProfiles()
	items := make([]Item, 0, len(profiles)+2)
	for _, p := range profiles {
		items = append(items, Item{Label: p.String(), Description: p.Description(), Profile: p})
	}
	items = append(items,
		Item{Label: "Help", View: messages.ViewHelp},
		Item{Label: "Quit", Quit: true},
	)

	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		items:  items,
		width:  80,
		height: 24,
	}
}

// Init implements the view contract; the menu has no startup command.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and fires the selected item.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			v.selected = max(v.selected-1, 0)
		case key.Matches(msg, v.keys.Down):
			v.selected = min(v.selected+1, len(v.items)-1)
		case key.Matches(msg, v.keys.Select):
			return v, v.items[v.selected].cmd()
		case key.Matches(msg, v.quit):
			return v, tea.Quit
		}
	}
	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("repochat") + "\n\n")
	b.WriteString(v.styles.Muted.Render("Choose a chat profile") + "\n\n")

	for i, item := range v.items {
		if i == v.selected {
			b.WriteString("> " + v.styles.MenuCursor.Render(item.Label) + "\n")
		} else {
			b.WriteString("  " + v.styles.MenuItem.Render(item.Label) + "\n")
		}
		if item.Description != "" {
			b.WriteString("    " + v.styles.Muted.Render(item.Description) + "\n")
		}
	}

	b.WriteString("\n" + v.styles.Muted.Render(keymap.Hints("  ", append(v.keys.MenuHelp(), v.quit)...)))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the index of the highlighted item.
func (v *View) Selected() int {
	return v.selected
}
