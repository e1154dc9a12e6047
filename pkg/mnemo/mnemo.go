// Package mnemo provides a public API for the mnemo memory system.
//
// Example usage:
//
//	import "github.com/mnemo-oss/mnemo/pkg/mnemo"
//
//	ws, err := mnemo.Open(".")
//	if err != nil { ... }
//	defer ws.Close()
//
//	err = ws.Memory.Store(ctx, "user_name", "The user's name is Dana", memory.CategoryCore, "")
//	results, err := ws.Memory.Recall(ctx, "who am I talking to?", 5, "")
package mnemo

import (
	"context"
	"fmt"

	"github.com/mnemo-oss/mnemo/internal/cache"
	"github.com/mnemo-oss/mnemo/internal/config"
	"github.com/mnemo-oss/mnemo/internal/embedding"
	"github.com/mnemo-oss/mnemo/internal/memory"
	"github.com/mnemo-oss/mnemo/internal/telemetry"
)

// Workspace bundles a loaded configuration with the memory manager and
// response cache built from it.
type Workspace struct {
	Config  *config.Config
	Logger  *telemetry.Logger
	Memory  *memory.Manager
	Cache   *cache.Cache // nil when disabled
	Metrics *telemetry.Metrics

	exporter telemetry.MetricsExporter
}

// Open loads mnemo.yaml from dir (or defaults) and wires up the memory
// stack it describes.
func Open(dir string) (*Workspace, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return OpenWithConfig(cfg)
}

// OpenWithConfig wires up the memory stack for an already-loaded config.
func OpenWithConfig(cfg *config.Config) (*Workspace, error) {
	logger := telemetry.New(cfg.Logging.Level, cfg.Logging.Format)

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	ws := &Workspace{
		Config:  cfg,
		Logger:  logger,
		Memory:  memory.NewManager(store, embedder, logger),
		Metrics: telemetry.NewMetrics(),
	}
	ws.Memory.SetMetrics(ws.Metrics)

	if cfg.Cache.Enabled {
		ws.Cache = cache.New(cfg.Cache.TTL(), cfg.Cache.MaxEntries)
	}

	if cfg.Logging.MetricsPath != "" {
		exporter, err := telemetry.NewJSONFileExporter(cfg.Logging.MetricsPath)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to open metrics file: %w", err)
		}
		ws.Metrics.SetExporter(exporter)
		ws.exporter = exporter
	}
	return ws, nil
}

// Close flushes metrics and releases the workspace's resources.
func (w *Workspace) Close() error {
	if w.exporter != nil {
		w.Metrics.Flush("session.closed", map[string]string{
			"agent":   w.Config.Agent,
			"backend": w.Memory.Backend(),
		})
		w.exporter.Close()
	}
	return w.Memory.Close()
}

// Remember stores a fact under key with a parsed category label.
func (w *Workspace) Remember(ctx context.Context, key, content, category, sessionID string) error {
	return w.Memory.Store(ctx, key, content, memory.ParseCategory(category), sessionID)
}

// Recall returns entries relevant to query.
func (w *Workspace) Recall(ctx context.Context, query string, limit int, sessionID string) ([]memory.Entry, error) {
	return w.Memory.Recall(ctx, query, limit, sessionID)
}

func newStore(cfg *config.Config) (memory.Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return memory.NewSQLiteStore(cfg.Storage.Path, cfg.Agent)
	case "chromem":
		return memory.NewChromemStore(cfg.Agent)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func newEmbedder(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Embedding.Provider {
	case "none", "":
		return nil, nil
	case "openai":
		timeout, err := cfg.Embedding.ParsedTimeout()
		if err != nil {
			return nil, fmt.Errorf("invalid embedding timeout: %w", err)
		}
		return embedding.NewOpenAI(embedding.OpenAIConfig{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKey:     cfg.Embedding.APIKey,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Timeout:    timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}
