package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	recallLimit   int
	recallSession string
)

var recallCmd = &cobra.Command{
	Use:   "recall <query>",
	Short: "Search memories by relevance",
	Long: `Search the agent's memory. Results are ranked by vector similarity
when an embedding provider is configured, with a keyword fallback so a
literal match is never missed.

Examples:
  mnemo recall "what does the user drink?"
  mnemo recall --limit 3 --session s42 "mood"`,
	Args: cobra.ExactArgs(1),
	RunE: runRecall,
}

func init() {
	recallCmd.Flags().IntVarP(&recallLimit, "limit", "n", 5, "maximum results")
	recallCmd.Flags().StringVarP(&recallSession, "session", "s", "", "restrict to a session")
}

func runRecall(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	results, err := ws.Recall(cmd.Context(), args[0], recallLimit, recallSession)
	if err != nil {
		return fmt.Errorf("recall failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching memories.")
		return nil
	}

	for _, entry := range results {
		fmt.Printf("%.2f  %s  [%s]\n", entry.Score, entry.Key, entry.Category)
		fmt.Printf("      %s\n", entry.Content)
	}
	return nil
}
