package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var forgetCmd = &cobra.Command{
	Use:   "forget <key>",
	Short: "Delete a memory by key",
	Args:  cobra.ExactArgs(1),
	RunE:  runForget,
}

func runForget(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	deleted, err := ws.Memory.Forget(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to forget memory: %w", err)
	}
	if !deleted {
		fmt.Printf("No memory for key %q\n", args[0])
		return nil
	}

	fmt.Printf("Forgot %q\n", args[0])
	return nil
}
