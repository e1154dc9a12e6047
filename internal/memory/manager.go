package memory

import (
	"context"
	"time"

	"github.com/mnemo-oss/mnemo/internal/embedding"
	"github.com/mnemo-oss/mnemo/internal/telemetry"
)

// MinSimilarity is the similarity threshold for vector recall. Matches
// scoring below it are dropped before the keyword fallback is considered.
const MinSimilarity = 0.3

// KeywordScore is the fixed nominal score assigned to keyword-fallback
// matches. Keyword hits are never true similarity scores.
const KeywordScore = 0.5

// Manager fronts a Store with embedding-aware writes and hybrid recall.
//
// Writes ask the embedding provider for a vector first and proceed without
// one if the provider fails — embedding is an enhancement, not a
// requirement. Recall prefers vector similarity and falls back to keyword
// matching, so a provider outage or a too-dissimilar corpus never hides a
// literal substring match.
type Manager struct {
	store    Store
	embedder embedding.Provider // nil = keyword-only operation
	logger   *telemetry.Logger
	metrics  *telemetry.Metrics // nil = no collection
}

// NewManager creates a Manager over the given store. embedder may be nil,
// which degrades writes to vector-less and recall to keyword-only.
func NewManager(store Store, embedder embedding.Provider, logger *telemetry.Logger) *Manager {
	if logger == nil {
		logger = telemetry.NewLogger(false)
	}
	return &Manager{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// SetMetrics attaches a metrics collector.
func (m *Manager) SetMetrics(metrics *telemetry.Metrics) {
	m.metrics = metrics
}

// Backend returns the name of the underlying store.
func (m *Manager) Backend() string {
	return m.store.Name()
}

// Store upserts a fact under key. The embedding call completes (or fails)
// before the write is handed to the backing store; a failed embedding is
// logged and the write proceeds without a vector.
func (m *Manager) Store(ctx context.Context, key, content string, category Category, sessionID string) error {
	var vec []float32
	if m.embedder != nil {
		v, err := m.embed(ctx, content)
		if err != nil {
			m.logger.WithTrace(ctx).Warn("embedding failed, storing without vector", "key", key, "error", err)
		} else {
			m.logger.Debug("generated embedding", "key", key, "dims", len(v))
			vec = v
		}
	}

	err := m.store.Upsert(ctx, UpsertRecord{
		Key:       key,
		Content:   content,
		Category:  category,
		SessionID: sessionID,
		Embedding: vec,
	})
	if err == nil && m.metrics != nil {
		m.metrics.IncMemoriesStored()
	}
	return err
}

// embed wraps the provider call with latency and failure accounting.
func (m *Manager) embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := m.embedder.Embed(ctx, text)
	if m.metrics != nil {
		if err != nil {
			m.metrics.IncEmbeddingFailures()
		} else {
			m.metrics.RecordEmbedLatency(time.Since(start))
		}
	}
	return vec, err
}

// Recall returns up to limit entries relevant to query, each with Score
// populated. Vector similarity is tried first; if it yields nothing (no
// provider, no stored vectors, or everything under threshold), a
// case-insensitive substring search over content and key runs instead.
// An empty query or non-positive limit returns nothing and does no work.
func (m *Manager) Recall(ctx context.Context, query string, limit int, sessionID string) ([]Entry, error) {
	if query == "" || limit <= 0 {
		return nil, nil
	}

	if m.metrics != nil {
		m.metrics.IncRecallRequests()
		start := time.Now()
		defer func() { m.metrics.RecordRecallDuration(time.Since(start)) }()
	}

	var results []Entry
	if m.embedder != nil {
		queryVec, err := m.embed(ctx, query)
		if err != nil {
			m.logger.WithTrace(ctx).Warn("query embedding failed, falling back to keyword search", "error", err)
		} else {
			matches, err := m.store.VectorSearch(ctx, queryVec, limit, sessionID)
			if err != nil {
				return nil, err
			}
			for _, match := range matches {
				score := SimilarityFromDistance(match.Distance)
				if score < MinSimilarity {
					continue
				}
				entry := match.Entry
				entry.Score = score
				results = append(results, entry)
			}
		}
	}

	// Vector results are final; the keyword path runs only when the
	// vector path produced nothing at all.
	if len(results) > 0 {
		return results, nil
	}

	entries, err := m.store.KeywordSearch(ctx, query, limit, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Score = KeywordScore
	}
	if len(entries) > 0 {
		if m.metrics != nil {
			m.metrics.IncKeywordFallbacks()
		}
		m.logger.Debug("keyword fallback matched", "query", query, "results", len(entries))
	}
	return entries, nil
}

// Get returns the entry for key, or nil if absent.
func (m *Manager) Get(ctx context.Context, key string) (*Entry, error) {
	return m.store.Get(ctx, key)
}

// List returns entries matching the filter, most recently updated first.
func (m *Manager) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	return m.store.List(ctx, filter)
}

// Forget deletes the entry for key, reporting whether one existed.
func (m *Manager) Forget(ctx context.Context, key string) (bool, error) {
	deleted, err := m.store.Delete(ctx, key)
	if err != nil {
		return false, err
	}
	if deleted {
		m.logger.Debug("forgot memory", "key", key)
	}
	return deleted, nil
}

// Count returns the total number of entries for the agent.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.store.Count(ctx)
}

// HealthCheck reports whether the backing store is reachable.
func (m *Manager) HealthCheck(ctx context.Context) bool {
	return m.store.HealthCheck(ctx)
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
