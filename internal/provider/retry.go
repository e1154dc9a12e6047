package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     60 * time.Second,
		JitterFraction: 0.2,
	}
}

// RetryClient wraps a Client with automatic retry for transient errors.
type RetryClient struct {
	inner  Client
	config RetryConfig
}

// NewRetryClient creates a RetryClient wrapping inner.
func NewRetryClient(inner Client, cfg RetryConfig) *RetryClient {
	return &RetryClient{inner: inner, config: cfg}
}

func (r *RetryClient) Name() string {
	return r.inner.Name()
}

func (r *RetryClient) Model() string {
	return r.inner.Model()
}

func (r *RetryClient) Complete(ctx context.Context, req *CompletionRequest) (*Completion, error) {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		resp, err := r.inner.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt == r.config.MaxRetries {
			break
		}

		delay := r.backoff(attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("max retries (%d) exceeded: %w", r.config.MaxRetries, lastErr)
}

// isRetryable determines whether an error should be retried.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are never retryable.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 529:
			return true
		}
		// Non-retryable status codes (400, 401, 403, 404, etc.)
		return false
	}

	// Unknown errors — don't retry by default.
	return false
}

// backoff calculates the delay for a given attempt using exponential backoff with jitter.
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := float64(r.config.InitialBackoff) * math.Pow(2, float64(attempt))
	if base > float64(r.config.MaxBackoff) {
		base = float64(r.config.MaxBackoff)
	}

	jitter := base * r.config.JitterFraction * (rand.Float64()*2 - 1) // ±jitter
	delay := time.Duration(base + jitter)
	if delay < 0 {
		delay = 0
	}
	return delay
}
