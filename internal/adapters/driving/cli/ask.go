package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/adapters/driven/ai"
	"github.com/custodia-labs/repochat/internal/core/domain"
)

var (
	askProfile string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Starts a session, answers one question and exits.

The Repo Q&A profile is used unless --profile says otherwise. Session
notices such as missing indexes are printed before the answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askProfile, "profile", "p", "repo", "chat profile (repo or general)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output replies as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON form of an ask run.
type askOutput struct {
	Profile string      `json:"profile"`
	Notices []replyJSON `json:"notices"`
	Replies []replyJSON `json:"replies"`
}

type replyJSON struct {
	Kind      string         `json:"kind"`
	Text      string         `json:"text"`
	Citations []citationJSON `json:"citations,omitempty"`
}

type citationJSON struct {
	Label      string `json:"label"`
	Source     string `json:"source"`
	Repository string `json:"repository,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	profile, err := domain.ParseChatProfile(askProfile)
	if err != nil {
		return err
	}

	need := ai.NeedLLM
	if profile.UsesRepositories() {
		need |= ai.NeedEmbedding
	}

	ctx := cmd.Context()
	app, err := appLoader(ctx, need)
	if err != nil {
		return err
	}
	defer app.Close()

	chat := app.ChatService()
	id, notices, err := chat.StartSession(ctx, profile)
	if err != nil {
		return err
	}
	defer func() { _ = chat.EndSession(ctx, id) }()

	replies, err := chat.Send(ctx, id, question)
	if err != nil {
		return err
	}

	if askJSON {
		out := askOutput{
			Profile: profile.String(),
			Notices: toReplyJSON(notices),
			Replies: toReplyJSON(replies),
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal replies: %w", err)
		}
		cmd.Println(string(data))
	} else {
		for _, n := range notices {
			cmd.PrintErrln(n.Text)
		}
		printReplies(cmd, replies)
	}

	for _, r := range replies {
		if r.Kind == domain.ReplyError {
			return errors.New("question could not be answered")
		}
	}
	return nil
}

func printReplies(cmd *cobra.Command, replies []domain.Reply) {
	for _, r := range replies {
		switch r.Kind {
		case domain.ReplyAnswer:
			cmd.Println(r.Text)
			if len(r.Citations) > 0 {
				cmd.Println()
				for _, c := range r.Citations {
					cmd.Printf("  %s\n", c.Label)
				}
			}
		default:
			cmd.Printf("%s: %s\n", r.Kind, r.Text)
		}
	}
}

func toReplyJSON(replies []domain.Reply) []replyJSON {
	out := make([]replyJSON, 0, len(replies))
	for _, r := range replies {
		j := replyJSON{Kind: r.Kind.String(), Text: r.Text}
		for _, c := range r.Citations {
			j.Citations = append(j.Citations, citationJSON{
				Label:      c.Label,
				Source:     c.Source,
				Repository: c.Repository,
			})
		}
		out = append(out, j)
	}
	return out
}
