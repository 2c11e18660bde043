package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/repochat/internal/core/domain"
)

// App is the root tea.Model. It owns the profile menu and the chat view
// and routes messages to whichever is on screen.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	menuView *menu.View
	chatView *chat.View

	// profile, when valid, skips the menu and starts a session at launch.
	profile     domain.ChatProfile
	currentView messages.ViewType
	err         error

	width, height int
	ready         bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keys:        km,
		menuView:    menu.NewView(s),
		chatView:    chat.NewView(s, km, ports.Router),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// WithProfile starts a session with profile at launch instead of
// showing the menu.
func (a *App) WithProfile(profile domain.ChatProfile) *App {
	a.profile = profile
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("repochat")}
	if a.profile.IsValid() {
		a.currentView = messages.ViewChat
		cmds = append(cmds, a.chatView.Start(a.profile))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if key.Matches(msg, a.keys.Back) || msg.String() == "q" {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ProfileSelected:
		a.currentView = messages.ViewChat
		return a, a.chatView.Start(msg.Profile)

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.Quit:
		return a, tea.Quit

	// Session results go to the chat view even when the user has already
	// navigated away, so its state stays consistent.
	case messages.SessionStarted:
		a.noteErr(msg.Err)
		return a.toChat(msg)
	case messages.RepliesReceived:
		a.noteErr(msg.Err)
		return a.toChat(msg)
	case messages.ErrorOccurred:
		a.noteErr(msg.Err)
		return a.toChat(msg)
	}

	return a.forward(msg)
}

// forward hands msg (keys, spinner ticks, cursor blinks) to the active view.
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	}
	return a, cmd
}

func (a *App) toChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *App) noteErr(err error) {
	if err != nil {
		a.err = err
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

var helpSections = []string{"Menu", "Chat", "Anywhere"}

// viewHelp lists the profiles and every key binding.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help") + "\n\n")

	b.WriteString("Profiles:\n")
	for _, p := range domain.AllChatProfiles() {
		fmt.Fprintf(&b, "  %-14s%s\n", p.String(), p.Description())
	}

	for i, group := range a.keys.FullHelp() {
		fmt.Fprintf(&b, "\n%s:\n", helpSections[i])
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-14s%s\n", h.Key, h.Desc)
		}
	}

	b.WriteString("\n" + a.styles.Muted.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Session returns the active chat session, or nil.
func (a *App) Session() *domain.SessionState {
	return a.chatView.State()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
}
