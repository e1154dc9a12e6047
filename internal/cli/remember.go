package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	rememberCategory string
	rememberSession  string
)

var rememberCmd = &cobra.Command{
	Use:   "remember <key> <content>",
	Short: "Store a fact under a key",
	Long: `Store a fact in the agent's memory. Writing to an existing key
replaces its content.

Examples:
  mnemo remember user_name "The user's name is Dana"
  mnemo remember standup --category daily "Shipped the importer"
  mnemo remember mood --session s42 "User sounded rushed today"`,
	Args: cobra.ExactArgs(2),
	RunE: runRemember,
}

func init() {
	rememberCmd.Flags().StringVarP(&rememberCategory, "category", "c", "core", "category label (core, daily, conversation, or custom)")
	rememberCmd.Flags().StringVarP(&rememberSession, "session", "s", "", "session to scope the fact to")
}

func runRemember(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	key, content := args[0], args[1]
	if err := ws.Remember(cmd.Context(), key, content, rememberCategory, rememberSession); err != nil {
		return fmt.Errorf("failed to store memory: %w", err)
	}

	fmt.Printf("Remembered %q\n", key)
	return nil
}
