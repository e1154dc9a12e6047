package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks a loaded configuration for unusable values
func Validate(cfg *Config) error {
	var errors []string

	// Validate storage driver
	validDrivers := map[string]bool{
		"sqlite":  true,
		"chromem": true,
	}
	if !validDrivers[cfg.Storage.Driver] {
		errors = append(errors, fmt.Sprintf("invalid storage driver: %s (must be sqlite or chromem)", cfg.Storage.Driver))
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		errors = append(errors, "sqlite storage requires a path")
	}

	// Validate embedding provider
	validEmbedding := map[string]bool{
		"none":   true,
		"openai": true,
	}
	if !validEmbedding[cfg.Embedding.Provider] {
		errors = append(errors, fmt.Sprintf("invalid embedding provider: %s (must be none or openai)", cfg.Embedding.Provider))
	}
	if cfg.Embedding.Dimensions < 0 {
		errors = append(errors, "embedding dimensions must be non-negative")
	}
	if cfg.Embedding.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Embedding.Timeout); err != nil {
			errors = append(errors, fmt.Sprintf("invalid embedding timeout %q: %s", cfg.Embedding.Timeout, err))
		}
	}

	// Validate model provider
	if cfg.Model.Provider != "anthropic" {
		errors = append(errors, fmt.Sprintf("invalid model provider: %s (must be anthropic)", cfg.Model.Provider))
	}
	if cfg.Model.MaxTokens < 0 {
		errors = append(errors, "model max_tokens must be non-negative")
	}

	// Validate cache bounds
	if cfg.Cache.TTLMinutes < 0 {
		errors = append(errors, "cache ttl_minutes must be non-negative")
	}
	if cfg.Cache.MaxEntries < 0 {
		errors = append(errors, "cache max_entries must be non-negative")
	}

	// Validate logging
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		errors = append(errors, fmt.Sprintf("invalid log level: %s", cfg.Logging.Level))
	}
	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[cfg.Logging.Format] {
		errors = append(errors, fmt.Sprintf("invalid log format: %s", cfg.Logging.Format))
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}
	return nil
}
