// Package anthropic implements the chat provider against the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	mnemoErrors "github.com/mnemo-oss/mnemo/internal/errors"
	"github.com/mnemo-oss/mnemo/internal/provider"
)

const defaultMaxTokens = 4096

// Client talks to the Anthropic Messages API.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int
}

// NewClient creates an Anthropic client. apiKey must be non-empty; the
// caller is expected to have resolved it from config or environment.
func NewClient(apiKey, model string, maxTokens int) (*Client, error) {
	if apiKey == "" {
		return nil, mnemoErrors.New(mnemoErrors.CodeAPIKeyMissing, "anthropic API key is not set").
			WithSuggestion("Set ANTHROPIC_API_KEY or model.api_key in mnemo.yaml")
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "anthropic"
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends a single-turn completion request.
func (c *Client) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.Completion, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeProviderError, "completion request failed", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &provider.Completion{
		Text: text.String(),
		Usage: provider.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}
