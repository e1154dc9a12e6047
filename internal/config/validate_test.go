package config

import "testing"

func validConfig() *Config {
	cfg := defaultConfig()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "postgres"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}

func TestValidate_SQLiteRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for sqlite without path")
	}
}

func TestValidate_ChromemNeedsNoPath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "chromem"
	cfg.Storage.Path = ""
	if err := Validate(cfg); err != nil {
		t.Fatalf("chromem should not require a path: %v", err)
	}
}

func TestValidate_UnknownEmbeddingProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Provider = "cohere"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown embedding provider")
	}
}

func TestValidate_BadEmbeddingTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Timeout = "banana"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
}

func TestValidate_UnknownModelProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Model.Provider = "openai"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown model provider")
	}
}

func TestValidate_NegativeCacheBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.TTLMinutes = -1
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for negative ttl_minutes")
	}

	cfg = validConfig()
	cfg.Cache.MaxEntries = -5
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for negative max_entries")
	}
}

func TestValidate_UnknownLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
