package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mnemo-oss/mnemo/pkg/mnemo"
)

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "Persistent memory for conversational agents",
	Long: `mnemo - a memory subsystem for conversational agents.

Store keyed facts, recall them by semantic or keyword search, and cache
model responses to avoid paying for the same prompt twice.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing mnemo.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(rememberCmd)
	rootCmd.AddCommand(recallCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func initConfig() {
	// Secrets commonly live in .env during development.
	_ = godotenv.Load()

	viper.AddConfigPath(configDir)
	viper.SetConfigName("mnemo")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// openWorkspace wires the memory stack for the configured directory.
func openWorkspace() (*mnemo.Workspace, error) {
	ws, err := mnemo.Open(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return ws, nil
}
