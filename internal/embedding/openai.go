package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	mnemoErrors "github.com/mnemo-oss/mnemo/internal/errors"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = "text-embedding-3-small"
	defaultDimensions = 1536
	defaultTimeout    = 30 * time.Second
)

// OpenAI calls an OpenAI-compatible /embeddings endpoint. Any server
// speaking that shape works (OpenAI, Ollama, LM Studio, vLLM, ...).
type OpenAI struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	httpClient *http.Client
}

// OpenAIConfig configures the OpenAI embedding provider.
type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// NewOpenAI creates a provider for an OpenAI-compatible embeddings API.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = defaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &OpenAI{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the provider name.
func (o *OpenAI) Name() string {
	return "openai"
}

// Dimensions returns the configured vector size.
func (o *OpenAI) Dimensions() int {
	return o.dimensions
}

// Embed converts a single text to an embedding vector.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbedMany converts a batch of texts, preserving order.
func (o *OpenAI) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embeddingRequest{Model: o.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeEmbeddingUnavailable, "embedding request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeEmbeddingUnavailable, "failed to read embedding response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, mnemoErrors.New(mnemoErrors.CodeEmbeddingUnavailable,
			fmt.Sprintf("embedding API error (status %d): %s", resp.StatusCode, string(respBody)))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeEmbeddingUnavailable, "failed to parse embedding response", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, mnemoErrors.New(mnemoErrors.CodeEmbeddingUnavailable,
			fmt.Sprintf("embedding API returned %d vectors for %d inputs", len(parsed.Data), len(texts)))
	}

	vecs := make([][]float32, len(texts))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(vecs) {
			return nil, mnemoErrors.New(mnemoErrors.CodeEmbeddingUnavailable,
				fmt.Sprintf("embedding API returned out-of-range index %d", item.Index))
		}
		if len(item.Embedding) != o.dimensions {
			return nil, mnemoErrors.New(mnemoErrors.CodeEmbeddingUnavailable,
				fmt.Sprintf("embedding has %d dimensions, expected %d", len(item.Embedding), o.dimensions))
		}
		vecs[item.Index] = item.Embedding
	}
	return vecs, nil
}
