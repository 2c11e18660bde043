// Package cli provides the cobra command tree for repochat.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "repochat",
	Short: "Chat with your code repositories",
	Long: `repochat indexes local code repositories and answers questions about them.

Build an index per repository with "repochat build", then ask questions
with "repochat chat" (interactive) or "repochat ask" (one-shot). The
General Chat profile talks to the model without repository context.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetOutput(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: ./config.yml, then ~/.repochat/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
