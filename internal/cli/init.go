package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [project-dir]",
	Short: "Initialize a mnemo project",
	Long:  `Create a starter mnemo.yaml and the local data directory.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) > 0 {
		projectDir = args[0]
	}

	if projectDir != "." {
		if err := os.MkdirAll(projectDir, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(projectDir, ".mnemo"), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	configPath := filepath.Join(projectDir, "mnemo.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	if err := createConfig(configPath); err != nil {
		return err
	}
	if err := createGitignore(projectDir); err != nil {
		return err
	}

	fmt.Printf("Initialized mnemo project in %s\n", projectDir)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Set ANTHROPIC_API_KEY (and OPENAI_API_KEY for embeddings)")
	fmt.Println("  2. Adjust mnemo.yaml to taste")
	fmt.Println("  3. Run 'mnemo remember greeting \"hello\"' to store your first memory")

	return nil
}

func createConfig(path string) error {
	content := `# mnemo.yaml - Project configuration
agent: default

# Memory backing store
storage:
  driver: sqlite      # sqlite | chromem (in-memory)
  path: .mnemo/memory.db

# Embedding provider for semantic recall
embedding:
  provider: none      # none | openai
  # model: text-embedding-3-small
  # dimensions: 1536
  # api_key: ${OPENAI_API_KEY}

# Chat model
model:
  provider: anthropic
  model: claude-sonnet-4-20250514
  max_tokens: 4096
  # api_key: ${ANTHROPIC_API_KEY}

# Response cache
cache:
  enabled: true
  ttl_minutes: 60
  max_entries: 1000

# Logging
logging:
  level: info
  format: text  # text | json
  # metrics_path: .mnemo/metrics.jsonl
`
	return os.WriteFile(path, []byte(content), 0644)
}

func createGitignore(projectDir string) error {
	content := `# mnemo
.mnemo/

# Secrets
*.env
.env.*

# OS
.DS_Store
Thumbs.db
`
	return os.WriteFile(filepath.Join(projectDir, ".gitignore"), []byte(content), 0644)
}
