package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/repochat/internal/adapters/driven/ai"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui"
	"github.com/custodia-labs/repochat/internal/core/domain"
)

var chatProfile string

// isTerminal reports whether stdin and stdout are attached to a terminal.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Opens the terminal chat UI.

Pick a profile from the menu, or pass --profile to start straight away:
  repo      Repo Q&A: answers from the indexed repositories with citations
  general   General Chat: answers from the model alone

Controls:
  Enter    - Send message
  PgUp/Dn  - Scroll transcript
  Esc      - Back to profiles
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatProfile, "profile", "p", "", "start with this profile (repo or general)")
	rootCmd.AddCommand(chatCmd)
}

// chatNeed returns the services a chat session needs. General Chat never
// embeds. When the profile is chosen from the menu the embedding service
// is only pinged once Repo Q&A starts.
func chatNeed(profile domain.ChatProfile) ai.Need {
	switch {
	case !profile.IsValid():
		return ai.NeedLLM | ai.NeedEmbedding | ai.DeferEmbeddingPing
	case profile.UsesRepositories():
		return ai.NeedLLM | ai.NeedEmbedding
	default:
		return ai.NeedLLM
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	var profile domain.ChatProfile
	if chatProfile != "" {
		p, err := domain.ParseChatProfile(chatProfile)
		if err != nil {
			return err
		}
		profile = p
	}

	if !isTerminal() {
		return errors.New("chat needs an interactive terminal; use 'repochat ask' instead")
	}

	app, err := appLoader(cmd.Context(), chatNeed(profile))
	if err != nil {
		return err
	}
	defer app.Close()

	ui, err := tui.NewApp(&tui.Ports{Router: app.Router()})
	if err != nil {
		return err
	}
	ui = ui.WithContext(cmd.Context())
	if profile.IsValid() {
		ui = ui.WithProfile(profile)
	}
	return ui.Run()
}
