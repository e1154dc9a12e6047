package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show memory backend and cache status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := cmd.Context()

	fmt.Printf("Agent:    %s\n", ws.Config.Agent)
	fmt.Printf("Backend:  %s", ws.Memory.Backend())
	if ws.Memory.HealthCheck(ctx) {
		fmt.Println("  (healthy)")
	} else {
		fmt.Println("  (unreachable)")
	}

	count, err := ws.Memory.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count memories: %w", err)
	}
	fmt.Printf("Memories: %d\n", count)

	if ws.Cache == nil {
		fmt.Println("Cache:    disabled")
		return nil
	}
	stats := ws.Cache.Stats()
	fmt.Printf("Cache:    %d entries, %d hits, %d tokens saved\n",
		stats.Entries, stats.Hits, stats.TokensSaved)
	return nil
}
