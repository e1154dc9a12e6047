package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Look up a memory by exact key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	entry, err := ws.Memory.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get memory: %w", err)
	}
	if entry == nil {
		fmt.Printf("No memory for key %q\n", args[0])
		return nil
	}

	fmt.Printf("Key:      %s\n", entry.Key)
	fmt.Printf("Category: %s\n", entry.Category)
	if entry.SessionID != "" {
		fmt.Printf("Session:  %s\n", entry.SessionID)
	}
	fmt.Printf("Updated:  %s\n", entry.UpdatedAt.Format(time.RFC3339))
	fmt.Printf("\n%s\n", entry.Content)
	return nil
}
