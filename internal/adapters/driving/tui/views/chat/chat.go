// Package chat provides the chat session view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

// chromeHeight is the number of lines used by the header, input and status bar.
const chromeHeight = 7

// entry is one line group of the transcript.
type entry struct {
	question string
	reply    domain.Reply
}

// View shows the transcript of one session with an input line below.
// The view owns the session state; the router only reads it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.ChatInput
	statusbar *status.Bar
	viewport  viewport.Model
	spinner   spinner.Model

	router driving.SessionRouter
	ctx    context.Context
	newID  func() string

	state      *domain.SessionState
	pending    *domain.SessionState
	profile    domain.ChatProfile
	transcript []entry
	busy       bool

	width  int
	height int
	ready  bool
}

// NewView creates a chat view that drives sessions through router.
func NewView(s *styles.Styles, km *keymap.KeyMap, router driving.SessionRouter) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	v := &View{
		styles:    s,
		keymap:    km,
		input:     input.NewChatInput(s),
		statusbar: status.NewBar(s, km),
		viewport:  viewport.New(80, 24-chromeHeight),
		spinner:   sp,
		router:    router,
		ctx:       context.Background(),
		newID:     uuid.NewString,
	}
	v.SetDimensions(80, 24)
	v.ready = false
	return v
}

// WithContext sets the context passed to the router.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Start discards any previous session and starts a new one with profile.
func (v *View) Start(profile domain.ChatProfile) tea.Cmd {
	v.state = nil
	v.profile = profile
	v.transcript = nil
	v.busy = true
	v.input.Reset()
	v.statusbar.Clear()
	v.statusbar.SetSession(profile.String(), "")
	v.statusbar.SetState(status.StateStarting)
	v.refresh()

	router, ctx := v.router, v.ctx
	state := domain.NewSessionState(v.newID())
	v.pending = state
	start := func() tea.Msg {
		var out collector
		err := router.Start(ctx, state, profile, &out)
		return messages.SessionStarted{State: state, Replies: out.replies, Err: err}
	}
	return tea.Batch(v.spinner.Tick, start, v.input.Focus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SessionStarted:
		if msg.State != v.pending {
			return v, nil
		}
		v.pending = nil
		v.busy = false
		v.state = msg.State
		v.appendReplies(msg.Replies)
		v.statusbar.SetSession(v.profile.String(), modeLabel(msg.State))
		v.setResult(msg.Err)
		return v, nil

	case messages.RepliesReceived:
		if msg.State != v.state {
			return v, nil
		}
		v.busy = false
		v.appendReplies(msg.Replies)
		v.setResult(msg.Err)
		return v, nil

	case messages.ErrorOccurred:
		v.setResult(msg.Err)
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case key.Matches(msg, v.keymap.ScrollUp, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case key.Matches(msg, v.keymap.Send):
		return v, v.send()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// send submits the input as one message. Blank input and messages sent
// while a reply is pending are ignored.
func (v *View) send() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	if text == "" || v.busy || v.state == nil {
		return nil
	}

	v.input.Reset()
	v.transcript = append(v.transcript, entry{question: text})
	v.busy = true
	v.statusbar.SetState(status.StateThinking)
	v.refresh()

	router, ctx, state := v.router, v.ctx, v.state
	handle := func() tea.Msg {
		var out collector
		err := router.Handle(ctx, state, text, &out)
		return messages.RepliesReceived{State: state, Replies: out.replies, Err: err}
	}
	return tea.Batch(v.spinner.Tick, handle)
}

func (v *View) appendReplies(replies []domain.Reply) {
	for _, r := range replies {
		v.transcript = append(v.transcript, entry{reply: r})
	}
	v.refresh()
}

func (v *View) setResult(err error) {
	if err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(err.Error())
		return
	}
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	wrap := max(v.width-6, 20)

	var b strings.Builder
	for _, e := range v.transcript {
		if e.question != "" {
			b.WriteString(v.styles.UserMessage.Render("You: " + e.question))
			b.WriteString("\n\n")
			continue
		}

		r := e.reply
		b.WriteString(v.styles.Reply(r.Kind).Width(wrap).Render(r.Text))
		if r.Kind == domain.ReplyAnswer {
			for _, c := range r.Citations {
				b.WriteString("\n")
				b.WriteString(v.styles.Citation.Render(c.Label))
			}
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("repochat"))
	b.WriteString(v.styles.Muted.Render(" · " + v.profile.String()))
	b.WriteString("\n\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n")
	if v.busy {
		b.WriteString(v.spinner.View() + v.styles.Muted.Render(" waiting for the model..."))
	}
	b.WriteString("\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.viewport.Width = width
	v.viewport.Height = max(height-chromeHeight, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// State returns the current session, or nil before it has started.
func (v *View) State() *domain.SessionState {
	return v.state
}

// Busy reports whether a reply is pending.
func (v *View) Busy() bool {
	return v.busy
}

// Transcript returns the rendered transcript.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

func modeLabel(state *domain.SessionState) string {
	if state == nil {
		return ""
	}
	switch state.Phase {
	case domain.PhaseRAGEnabled:
		return "repositories: " + strings.Join(state.Repositories, ", ")
	case domain.PhaseDirectOnly:
		return "direct"
	default:
		return ""
	}
}

// collector gathers the replies of one router call.
type collector struct {
	replies []domain.Reply
}

var _ driven.MessageSink = (*collector)(nil)

func (c *collector) Send(_ context.Context, reply domain.Reply) error {
	c.replies = append(c.replies, reply)
	return nil
}
