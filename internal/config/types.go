package config

import "time"

// Config represents the main project configuration (mnemo.yaml)
type Config struct {
	Agent     string          `yaml:"agent" json:"agent"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding" json:"embedding"`
	Model     ModelConfig     `yaml:"model" json:"model"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// StorageConfig configures the memory backing store
type StorageConfig struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite, chromem
	Path   string `yaml:"path" json:"path"`     // file path (sqlite only)
}

// EmbeddingConfig configures the embedding provider
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" json:"provider"` // none, openai
	BaseURL    string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	APIKey     string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	Model      string `yaml:"model,omitempty" json:"model,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Timeout    string `yaml:"timeout,omitempty" json:"timeout,omitempty"` // e.g., "30s"
}

// ModelConfig configures the chat model provider
type ModelConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // anthropic
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// CacheConfig configures the response cache
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	TTLMinutes int  `yaml:"ttl_minutes" json:"ttl_minutes"`
	MaxEntries int  `yaml:"max_entries" json:"max_entries"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format      string `yaml:"format" json:"format"` // text, json
	MetricsPath string `yaml:"metrics_path,omitempty" json:"metrics_path,omitempty"` // JSONL metrics file (empty = off)
}

// ParsedTimeout converts the embedding timeout string to time.Duration
func (e *EmbeddingConfig) ParsedTimeout() (time.Duration, error) {
	if e.Timeout == "" {
		return 30 * time.Second, nil // default
	}
	return time.ParseDuration(e.Timeout)
}

// TTL converts the configured cache TTL to time.Duration
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
