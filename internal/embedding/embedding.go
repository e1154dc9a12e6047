// Package embedding defines the text-to-vector provider boundary used by
// the memory system. Provider failure is a normal, expected outcome
// (network or model unavailability): callers degrade to keyword-only
// behavior instead of failing the surrounding operation.
package embedding

import "context"

// Provider converts text into fixed-dimension embedding vectors.
// Implementations: OpenAI (HTTP API), Mock (tests).
type Provider interface {
	// Name identifies the provider (e.g. "openai").
	Name() string

	// Dimensions returns the fixed vector size this provider produces.
	// It must match what the backing store expects for similarity
	// computation.
	Dimensions() int

	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedMany converts a batch of texts, preserving order.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}
