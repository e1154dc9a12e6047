package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects runtime metrics for the memory pipeline
type Metrics struct {
	mu sync.RWMutex

	// Counters
	MemoriesStored    int64
	RecallRequests    int64
	KeywordFallbacks  int64
	EmbeddingFailures int64
	CacheHits         int64
	CacheMisses       int64

	// Histograms (simplified)
	recallDurations []time.Duration
	embedLatencies  []time.Duration

	// Exporter (optional)
	exporter MetricsExporter
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		recallDurations: make([]time.Duration, 0, 1000),
		embedLatencies:  make([]time.Duration, 0, 1000),
	}
}

// IncMemoriesStored increments the stored-memories counter
func (m *Metrics) IncMemoriesStored() {
	atomic.AddInt64(&m.MemoriesStored, 1)
}

// IncRecallRequests increments the recall counter
func (m *Metrics) IncRecallRequests() {
	atomic.AddInt64(&m.RecallRequests, 1)
}

// IncKeywordFallbacks counts recalls answered by the keyword path
func (m *Metrics) IncKeywordFallbacks() {
	atomic.AddInt64(&m.KeywordFallbacks, 1)
}

// IncEmbeddingFailures counts embedding provider errors
func (m *Metrics) IncEmbeddingFailures() {
	atomic.AddInt64(&m.EmbeddingFailures, 1)
}

// IncCacheHits increments the response cache hit counter
func (m *Metrics) IncCacheHits() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncCacheMisses increments the response cache miss counter
func (m *Metrics) IncCacheMisses() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// RecordRecallDuration records how long a recall took end to end
func (m *Metrics) RecordRecallDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recallDurations = append(m.recallDurations, d)
}

// RecordEmbedLatency records an embedding provider call latency
func (m *Metrics) RecordEmbedLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedLatencies = append(m.embedLatencies, d)
}

// GetSummary returns a summary of collected metrics
func (m *Metrics) GetSummary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := map[string]interface{}{
		"memories_stored":    atomic.LoadInt64(&m.MemoriesStored),
		"recall_requests":    atomic.LoadInt64(&m.RecallRequests),
		"keyword_fallbacks":  atomic.LoadInt64(&m.KeywordFallbacks),
		"embedding_failures": atomic.LoadInt64(&m.EmbeddingFailures),
		"cache_hits":         atomic.LoadInt64(&m.CacheHits),
		"cache_misses":       atomic.LoadInt64(&m.CacheMisses),
	}

	// Add duration stats
	if len(m.recallDurations) > 0 {
		var total time.Duration
		for _, d := range m.recallDurations {
			total += d
		}
		summary["avg_recall_duration_ms"] = total.Milliseconds() / int64(len(m.recallDurations))
	}

	if len(m.embedLatencies) > 0 {
		var total time.Duration
		for _, d := range m.embedLatencies {
			total += d
		}
		summary["avg_embed_latency_ms"] = total.Milliseconds() / int64(len(m.embedLatencies))
	}

	return summary
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	atomic.StoreInt64(&m.MemoriesStored, 0)
	atomic.StoreInt64(&m.RecallRequests, 0)
	atomic.StoreInt64(&m.KeywordFallbacks, 0)
	atomic.StoreInt64(&m.EmbeddingFailures, 0)
	atomic.StoreInt64(&m.CacheHits, 0)
	atomic.StoreInt64(&m.CacheMisses, 0)

	m.recallDurations = m.recallDurations[:0]
	m.embedLatencies = m.embedLatencies[:0]
}

// SetExporter attaches a metrics exporter.
func (m *Metrics) SetExporter(e MetricsExporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exporter = e
}

// Flush exports the current metrics snapshot with the given event label.
func (m *Metrics) Flush(event string, labels map[string]string) {
	m.mu.RLock()
	exporter := m.exporter
	m.mu.RUnlock()

	if exporter == nil {
		return
	}

	snapshot := MetricsSnapshot{
		Timestamp: time.Now(),
		Event:     event,
		Metrics:   m.GetSummary(),
		Labels:    labels,
	}
	// Best-effort export.
	_ = exporter.Export(snapshot)
}
