package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJSONFileExporter_Export(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".mnemo", "metrics.jsonl")

	exporter, err := NewJSONFileExporter(path)
	if err != nil {
		t.Fatal(err)
	}
	defer exporter.Close()

	snapshot := MetricsSnapshot{
		Timestamp: time.Now(),
		Event:     "recall.completed",
		Metrics: map[string]interface{}{
			"recall_requests":   int64(5),
			"keyword_fallbacks": int64(2),
		},
		Labels: map[string]string{
			"agent":   "assistant",
			"backend": "sqlite",
		},
	}

	if err := exporter.Export(snapshot); err != nil {
		t.Fatal(err)
	}

	// Write another snapshot
	snapshot.Event = "session.closed"
	if err := exporter.Export(snapshot); err != nil {
		t.Fatal(err)
	}

	exporter.Close()

	// Read and verify
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	lines := splitLines(string(data))
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}

	var parsed MetricsSnapshot
	if err := json.Unmarshal([]byte(lines[0]), &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Event != "recall.completed" {
		t.Errorf("expected event 'recall.completed', got %q", parsed.Event)
	}
}

func TestMetrics_FlushWithExporter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.jsonl")

	exporter, err := NewJSONFileExporter(path)
	if err != nil {
		t.Fatal(err)
	}

	m := NewMetrics()
	m.SetExporter(exporter)
	m.IncRecallRequests()

	m.Flush("recall.completed", map[string]string{"backend": "chromem"})
	exporter.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(data) == 0 {
		t.Error("expected non-empty metrics file")
	}

	var snapshot MetricsSnapshot
	if err := json.Unmarshal(data[:len(data)-1], &snapshot); err != nil {
		t.Fatal(err)
	}
	if snapshot.Event != "recall.completed" {
		t.Errorf("expected event 'recall.completed', got %q", snapshot.Event)
	}
}

func TestMetrics_FlushWithoutExporter(t *testing.T) {
	m := NewMetrics()
	// Should not panic
	m.Flush("test", nil)
}

func TestMetrics_SummaryAndReset(t *testing.T) {
	m := NewMetrics()
	m.IncMemoriesStored()
	m.IncRecallRequests()
	m.IncRecallRequests()
	m.IncKeywordFallbacks()
	m.IncEmbeddingFailures()
	m.RecordRecallDuration(10 * time.Millisecond)
	m.RecordEmbedLatency(4 * time.Millisecond)

	summary := m.GetSummary()
	if summary["memories_stored"] != int64(1) {
		t.Errorf("expected 1 stored, got %v", summary["memories_stored"])
	}
	if summary["recall_requests"] != int64(2) {
		t.Errorf("expected 2 recalls, got %v", summary["recall_requests"])
	}
	if _, ok := summary["avg_recall_duration_ms"]; !ok {
		t.Error("expected avg_recall_duration_ms in summary")
	}

	m.Reset()
	summary = m.GetSummary()
	if summary["recall_requests"] != int64(0) {
		t.Errorf("expected reset counters, got %v", summary["recall_requests"])
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
