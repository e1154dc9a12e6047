package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestMnemoError_Error(t *testing.T) {
	err := New(CodeConfigInvalid, "missing storage driver")
	expected := "[CONFIG_INVALID] missing storage driver"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestMnemoError_Wrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := Wrap(CodeBackingStore, "upsert failed", inner)

	if err.Error() != "[BACKING_STORE] upsert failed: connection refused" {
		t.Errorf("unexpected error string: %s", err.Error())
	}

	// Unwrap should return inner
	if !errors.Is(err, inner) {
		t.Error("errors.Is should find inner error")
	}
}

func TestMnemoError_WithSuggestion(t *testing.T) {
	err := New(CodeAPIKeyMissing, "ANTHROPIC_API_KEY not set").
		WithSuggestion("Set the ANTHROPIC_API_KEY environment variable or add api_key to mnemo.yaml")

	if err.Suggestion != "Set the ANTHROPIC_API_KEY environment variable or add api_key to mnemo.yaml" {
		t.Errorf("unexpected suggestion: %s", err.Suggestion)
	}
}

func TestMnemoError_ErrorsAs(t *testing.T) {
	err := Wrap(CodeEmbeddingUnavailable, "embedding request failed", fmt.Errorf("deadline exceeded"))

	var mnemoErr *MnemoError
	if !errors.As(err, &mnemoErr) {
		t.Fatal("errors.As should work")
	}
	if mnemoErr.Code != CodeEmbeddingUnavailable {
		t.Errorf("expected code %q, got %q", CodeEmbeddingUnavailable, mnemoErr.Code)
	}
}

func TestAsCode(t *testing.T) {
	err := New(CodeBackingStore, "query failed")
	if AsCode(err) != CodeBackingStore {
		t.Errorf("expected code %q, got %q", CodeBackingStore, AsCode(err))
	}

	// Non-MnemoError
	plain := fmt.Errorf("plain error")
	if AsCode(plain) != "" {
		t.Error("expected empty code for non-MnemoError")
	}
}

func TestSuggestion(t *testing.T) {
	err := New(CodeConfigInvalid, "unknown driver").WithSuggestion("use sqlite or chromem")
	if Suggestion(err) != "use sqlite or chromem" {
		t.Errorf("expected 'use sqlite or chromem', got %q", Suggestion(err))
	}

	// Non-MnemoError
	if Suggestion(fmt.Errorf("plain")) != "" {
		t.Error("expected empty suggestion for non-MnemoError")
	}
}

func TestMnemoError_WrappedAs(t *testing.T) {
	inner := New(CodeProviderError, "API error")
	wrapped := fmt.Errorf("chat turn failed: %w", inner)

	var mnemoErr *MnemoError
	if !errors.As(wrapped, &mnemoErr) {
		t.Fatal("errors.As should unwrap through fmt.Errorf")
	}
	if mnemoErr.Code != CodeProviderError {
		t.Errorf("expected code %q, got %q", CodeProviderError, mnemoErr.Code)
	}
}
