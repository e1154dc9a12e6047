package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mnemo-oss/mnemo/internal/memory"
)

var (
	listCategory string
	listSession  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored memories",
	Long: `List the agent's memories, most recently updated first.

Examples:
  mnemo list
  mnemo list --category daily
  mnemo list --session s42`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "filter by category")
	listCmd.Flags().StringVarP(&listSession, "session", "s", "", "filter by session")
}

func runList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	filter := memory.ListFilter{SessionID: listSession}
	if listCategory != "" {
		filter.Category = memory.ParseCategory(listCategory)
	}

	entries, err := ws.Memory.List(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list memories: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No memories stored.")
		return nil
	}

	for _, entry := range entries {
		fmt.Printf("%s  %-24s [%s]  %s\n",
			entry.UpdatedAt.Format(time.DateTime),
			entry.Key,
			entry.Category,
			truncate(entry.Content, 60),
		)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
