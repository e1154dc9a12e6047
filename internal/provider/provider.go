package provider

import "context"

// CompletionRequest represents a completion request
type CompletionRequest struct {
	System string `json:"system,omitempty"` // optional system prompt
	Prompt string `json:"prompt"`           // user prompt
}

// Completion represents a provider response
type Completion struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// Usage tracks token usage
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Client defines the interface for chat model providers
type Client interface {
	// Name returns the provider name
	Name() string

	// Model returns the model identifier requests are sent to
	Model() string

	// Complete sends a completion request
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}
