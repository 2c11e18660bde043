package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

var indexesJSON bool

var indexesCmd = &cobra.Command{
	Use:     "indexes",
	Aliases: []string{"status"},
	Short:   "List repositories and their indexes",
	Long: `Lists every configured repository and whether an index has been built
for it. Does not contact any model provider.`,
	Args: cobra.NoArgs,
	RunE: runIndexes,
}

func init() {
	indexesCmd.Flags().BoolVar(&indexesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(indexesCmd)
}

// indexJSON is the JSON form of a repository status.
type indexJSON struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Indexed    bool   `json:"indexed"`
	Chunks     int    `json:"chunks,omitempty"`
	Model      string `json:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
	BuiltAt    string `json:"built_at,omitempty"`
}

func runIndexes(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	app, err := appLoader(ctx, 0)
	if err != nil {
		return err
	}
	defer app.Close()

	statuses, err := app.ChatService().Repositories(ctx)
	if err != nil {
		return err
	}

	if indexesJSON {
		out := make([]indexJSON, 0, len(statuses))
		for _, s := range statuses {
			j := indexJSON{Name: s.Name, Path: s.Path, Indexed: s.Indexed}
			if s.Index != nil {
				j.Chunks = s.Index.Chunks
				j.Model = s.Index.Model
				j.Dimensions = s.Index.Dimensions
				j.BuiltAt = s.Index.CreatedAt.UTC().Format(time.RFC3339)
			}
			out = append(out, j)
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal indexes: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return printIndexTable(cmd, statuses)
}

func printIndexTable(cmd *cobra.Command, statuses []driving.RepositoryStatus) error {
	if len(statuses) == 0 {
		cmd.Println("No repositories configured.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCHUNKS\tMODEL\tBUILT\tPATH")
	for _, s := range statuses {
		if s.Index == nil {
			fmt.Fprintf(tw, "%s\t-\t-\tnot built\t%s\n", s.Name, s.Path)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			s.Name, s.Index.Chunks, s.Index.Model,
			s.Index.CreatedAt.Local().Format("2006-01-02 15:04"), s.Path)
	}
	return tw.Flush()
}
