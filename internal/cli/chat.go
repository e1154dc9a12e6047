package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-oss/mnemo/internal/cache"
	"github.com/mnemo-oss/mnemo/internal/provider"
	"github.com/mnemo-oss/mnemo/internal/provider/anthropic"
	"github.com/mnemo-oss/mnemo/internal/telemetry"
	"github.com/mnemo-oss/mnemo/pkg/mnemo"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the model using memory and the response cache",
	Long: `Start an interactive chat. Each prompt is answered from the response
cache when possible; otherwise the model is called and the answer cached.
Relevant memories are recalled into the system prompt.

Commands inside the chat:
  /stats   show cache statistics
  /clear   clear the response cache
  /quit    exit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "session to scope recall to")
}

func runChat(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	client, err := anthropic.NewClient(ws.Config.Model.APIKey, ws.Config.Model.Model, ws.Config.Model.MaxTokens)
	if err != nil {
		return err
	}
	model := provider.NewRetryClient(client, provider.DefaultRetryConfig())

	// One trace per chat session; each prompt gets a child span.
	ctx := telemetry.ContextWithTrace(cmd.Context(), telemetry.NewTraceContext(chatSession))

	fmt.Printf("Chatting with %s (Ctrl+D or /quit to exit)\n", model.Model())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/stats":
			printCacheStats(ws.Cache)
			continue
		case "/clear":
			if ws.Cache == nil {
				fmt.Println("Cache is disabled.")
				continue
			}
			fmt.Printf("Cleared %d cached responses.\n", ws.Cache.Clear())
			continue
		}

		reply, err := answer(ctx, ws, model, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
}

// answer resolves a prompt through the cache, falling back to the model.
func answer(ctx context.Context, ws *mnemo.Workspace, model provider.Client, prompt string) (string, error) {
	system := buildSystemPrompt(ctx, ws, prompt)

	var key string
	if ws.Cache != nil {
		key = cache.Key(model.Model(), system, prompt)
		if cached, ok := ws.Cache.Get(key); ok {
			ws.Metrics.IncCacheHits()
			return cached, nil
		}
		ws.Metrics.IncCacheMisses()
	}

	resp, err := model.Complete(ctx, &provider.CompletionRequest{
		System: system,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}

	if ws.Cache != nil {
		ws.Cache.Put(key, model.Model(), resp.Text, resp.Usage.OutputTokens)
	}
	return resp.Text, nil
}

// buildSystemPrompt folds recalled memories into the system prompt so the
// model can use what the agent already knows.
func buildSystemPrompt(ctx context.Context, ws *mnemo.Workspace, prompt string) string {
	memories, err := ws.Recall(ctx, prompt, 3, chatSession)
	if err != nil || len(memories) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Things you remember about this user:\n")
	for _, m := range memories {
		fmt.Fprintf(&b, "- %s\n", m.Content)
	}
	return b.String()
}

func printCacheStats(c *cache.Cache) {
	if c == nil {
		fmt.Println("Cache is disabled.")
		return
	}
	stats := c.Stats()
	fmt.Printf("Cache: %d entries, %d hits, %d tokens saved\n",
		stats.Entries, stats.Hits, stats.TokensSaved)
}
