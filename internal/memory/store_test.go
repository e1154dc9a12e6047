package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// newTestStores builds one of each backend so the Store contract tests run
// against both implementations.
func newTestStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "memory.db"), "test-agent")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	chromem, err := NewChromemStore("test-agent")
	if err != nil {
		t.Fatalf("failed to create chromem store: %v", err)
	}
	t.Cleanup(func() { chromem.Close() })

	return map[string]Store{"sqlite": sqlite, "chromem": chromem}
}

func TestStoreUpsertAndGet(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := store.Upsert(ctx, UpsertRecord{
				Key:      "user_name",
				Content:  "The user's name is Dana",
				Category: CategoryCore,
			})
			if err != nil {
				t.Fatalf("upsert failed: %v", err)
			}

			entry, err := store.Get(ctx, "user_name")
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if entry == nil {
				t.Fatal("expected entry, got nil")
			}
			if entry.Content != "The user's name is Dana" {
				t.Errorf("unexpected content: %q", entry.Content)
			}
			if entry.Category != CategoryCore {
				t.Errorf("unexpected category: %q", entry.Category)
			}
			if entry.ID == "" {
				t.Error("entry should have an ID")
			}
			if entry.UpdatedAt.IsZero() {
				t.Error("entry should have an update time")
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			entry, err := store.Get(context.Background(), "no_such_key")
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if entry != nil {
				t.Errorf("expected nil for missing key, got %+v", entry)
			}
		})
	}
}

func TestStoreUpsertIsIdempotentOnKey(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.Upsert(ctx, UpsertRecord{Key: "pref", Content: "v1", Category: CategoryCore}); err != nil {
				t.Fatal(err)
			}
			first, err := store.Get(ctx, "pref")
			if err != nil || first == nil {
				t.Fatalf("get after first upsert: %v, %v", first, err)
			}

			time.Sleep(2 * time.Millisecond)
			if err := store.Upsert(ctx, UpsertRecord{Key: "pref", Content: "v2", Category: CategoryDaily}); err != nil {
				t.Fatal(err)
			}

			second, err := store.Get(ctx, "pref")
			if err != nil || second == nil {
				t.Fatalf("get after second upsert: %v, %v", second, err)
			}
			if second.Content != "v2" {
				t.Errorf("expected updated content, got %q", second.Content)
			}
			if second.Category != CategoryDaily {
				t.Errorf("expected updated category, got %q", second.Category)
			}
			if second.ID != first.ID {
				t.Errorf("update should preserve entry ID: %q vs %q", second.ID, first.ID)
			}
			if !second.UpdatedAt.After(first.UpdatedAt) {
				t.Error("update should refresh the update time")
			}

			count, err := store.Count(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if count != 1 {
				t.Errorf("expected 1 entry after re-upsert, got %d", count)
			}
		})
	}
}

func TestStoreUpsertKeepsVectorWhenEmbeddingNil(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			vec := []float32{0.6, 0.8, 0}

			if err := store.Upsert(ctx, UpsertRecord{Key: "fact", Content: "v1", Category: CategoryCore, Embedding: vec}); err != nil {
				t.Fatal(err)
			}
			// Second write has no vector; the stored one must survive.
			if err := store.Upsert(ctx, UpsertRecord{Key: "fact", Content: "v2", Category: CategoryCore}); err != nil {
				t.Fatal(err)
			}

			matches, err := store.VectorSearch(ctx, vec, 5, "")
			if err != nil {
				t.Fatalf("vector search failed: %v", err)
			}
			if len(matches) != 1 {
				t.Fatalf("expected 1 match, got %d", len(matches))
			}
			if matches[0].Entry.Key != "fact" {
				t.Errorf("unexpected match key: %q", matches[0].Entry.Key)
			}
			if matches[0].Distance > 1e-5 {
				t.Errorf("same vector should have near-zero distance, got %v", matches[0].Distance)
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.Upsert(ctx, UpsertRecord{Key: "temp", Content: "scratch", Category: CategoryDaily}); err != nil {
				t.Fatal(err)
			}

			deleted, err := store.Delete(ctx, "temp")
			if err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if !deleted {
				t.Error("expected delete to report an existing entry")
			}

			deleted, err = store.Delete(ctx, "temp")
			if err != nil {
				t.Fatalf("second delete failed: %v", err)
			}
			if deleted {
				t.Error("deleting a missing key should report false")
			}

			entry, err := store.Get(ctx, "temp")
			if err != nil {
				t.Fatal(err)
			}
			if entry != nil {
				t.Error("entry should be gone after delete")
			}
		})
	}
}

func TestStoreListFilters(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			seed := []UpsertRecord{
				{Key: "a", Content: "core fact", Category: CategoryCore},
				{Key: "b", Content: "daily note", Category: CategoryDaily, SessionID: "s1"},
				{Key: "c", Content: "another daily note", Category: CategoryDaily, SessionID: "s2"},
			}
			for _, rec := range seed {
				if err := store.Upsert(ctx, rec); err != nil {
					t.Fatal(err)
				}
				time.Sleep(2 * time.Millisecond)
			}

			all, err := store.List(ctx, ListFilter{})
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 3 {
				t.Fatalf("expected 3 entries, got %d", len(all))
			}
			// Most recently updated first.
			if all[0].Key != "c" || all[2].Key != "a" {
				t.Errorf("unexpected order: %q, %q, %q", all[0].Key, all[1].Key, all[2].Key)
			}

			daily, err := store.List(ctx, ListFilter{Category: CategoryDaily})
			if err != nil {
				t.Fatal(err)
			}
			if len(daily) != 2 {
				t.Errorf("expected 2 daily entries, got %d", len(daily))
			}

			s1, err := store.List(ctx, ListFilter{SessionID: "s1"})
			if err != nil {
				t.Fatal(err)
			}
			if len(s1) != 1 || s1[0].Key != "b" {
				t.Errorf("unexpected session filter result: %+v", s1)
			}
		})
	}
}

func TestStoreCount(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			count, err := store.Count(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if count != 0 {
				t.Errorf("expected empty store, got %d", count)
			}

			for _, key := range []string{"one", "two", "three"} {
				if err := store.Upsert(ctx, UpsertRecord{Key: key, Content: key, Category: CategoryCore}); err != nil {
					t.Fatal(err)
				}
			}

			count, err = store.Count(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if count != 3 {
				t.Errorf("expected 3 entries, got %d", count)
			}
		})
	}
}

func TestStoreVectorSearchRanksByDistance(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// Unit vectors at increasing angles from the query.
			seed := []struct {
				key string
				vec []float32
			}{
				{"exact", []float32{1, 0, 0}},
				{"close", []float32{0.9, 0.4359, 0}},
				{"far", []float32{0, 1, 0}},
			}
			for _, s := range seed {
				if err := store.Upsert(ctx, UpsertRecord{Key: s.key, Content: s.key, Category: CategoryCore, Embedding: s.vec}); err != nil {
					t.Fatal(err)
				}
			}

			matches, err := store.VectorSearch(ctx, []float32{1, 0, 0}, 10, "")
			if err != nil {
				t.Fatalf("vector search failed: %v", err)
			}
			if len(matches) != 3 {
				t.Fatalf("expected 3 matches, got %d", len(matches))
			}
			if matches[0].Entry.Key != "exact" || matches[1].Entry.Key != "close" || matches[2].Entry.Key != "far" {
				t.Errorf("unexpected ranking: %q, %q, %q",
					matches[0].Entry.Key, matches[1].Entry.Key, matches[2].Entry.Key)
			}
			for i := 1; i < len(matches); i++ {
				if matches[i].Distance < matches[i-1].Distance {
					t.Errorf("distances should be ascending: %v then %v",
						matches[i-1].Distance, matches[i].Distance)
				}
			}

			limited, err := store.VectorSearch(ctx, []float32{1, 0, 0}, 2, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(limited) != 2 {
				t.Errorf("expected limit to truncate to 2, got %d", len(limited))
			}
		})
	}
}

func TestStoreVectorSearchSkipsUnembedded(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.Upsert(ctx, UpsertRecord{Key: "plain", Content: "no vector here", Category: CategoryCore}); err != nil {
				t.Fatal(err)
			}
			if err := store.Upsert(ctx, UpsertRecord{Key: "embedded", Content: "has a vector", Category: CategoryCore, Embedding: []float32{0, 1, 0}}); err != nil {
				t.Fatal(err)
			}

			matches, err := store.VectorSearch(ctx, []float32{0, 1, 0}, 10, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(matches) != 1 || matches[0].Entry.Key != "embedded" {
				t.Errorf("expected only the embedded entry, got %+v", matches)
			}
		})
	}
}

func TestStoreVectorSearchSessionFilter(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			vec := []float32{1, 0, 0}

			if err := store.Upsert(ctx, UpsertRecord{Key: "global", Content: "everywhere", Category: CategoryCore, Embedding: vec}); err != nil {
				t.Fatal(err)
			}
			if err := store.Upsert(ctx, UpsertRecord{Key: "scoped", Content: "session only", Category: CategoryConversation, SessionID: "s1", Embedding: vec}); err != nil {
				t.Fatal(err)
			}

			matches, err := store.VectorSearch(ctx, vec, 10, "s1")
			if err != nil {
				t.Fatal(err)
			}
			if len(matches) != 1 || matches[0].Entry.Key != "scoped" {
				t.Errorf("expected only the session-scoped entry, got %+v", matches)
			}
		})
	}
}

func TestStoreKeywordSearch(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			seed := []UpsertRecord{
				{Key: "coffee_pref", Content: "Prefers espresso over drip", Category: CategoryCore},
				{Key: "lunch", Content: "Had a sandwich and COFFEE at noon", Category: CategoryDaily},
				{Key: "unrelated", Content: "Lives in Lisbon", Category: CategoryCore},
			}
			for _, rec := range seed {
				if err := store.Upsert(ctx, rec); err != nil {
					t.Fatal(err)
				}
				time.Sleep(2 * time.Millisecond)
			}

			// Matches content case-insensitively and the key itself.
			entries, err := store.KeywordSearch(ctx, "coffee", 10, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 2 {
				t.Fatalf("expected 2 matches, got %d", len(entries))
			}
			// Most recently updated first.
			if entries[0].Key != "lunch" || entries[1].Key != "coffee_pref" {
				t.Errorf("unexpected order: %q, %q", entries[0].Key, entries[1].Key)
			}

			limited, err := store.KeywordSearch(ctx, "coffee", 1, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(limited) != 1 {
				t.Errorf("expected limit to truncate to 1, got %d", len(limited))
			}

			none, err := store.KeywordSearch(ctx, "quantum", 10, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(none) != 0 {
				t.Errorf("expected no matches, got %d", len(none))
			}
		})
	}
}

func TestStoreHealthCheck(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if !store.HealthCheck(context.Background()) {
				t.Error("fresh store should be healthy")
			}
		})
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path, "agent-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(ctx, UpsertRecord{Key: "durable", Content: "still here", Category: CategoryCore, Embedding: []float32{0.1, 0.2}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLiteStore(path, "agent-1")
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	entry, err := reopened.Get(ctx, "durable")
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.Content != "still here" {
		t.Fatalf("expected entry to survive reopen, got %+v", entry)
	}

	matches, err := reopened.VectorSearch(ctx, []float32{0.1, 0.2}, 5, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("expected stored vector to survive reopen, got %d matches", len(matches))
	}
}

func TestSQLiteStoreIsolatesAgents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	ctx := context.Background()

	a, err := NewSQLiteStore(path, "agent-a")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.Upsert(ctx, UpsertRecord{Key: "shared_key", Content: "belongs to a", Category: CategoryCore}); err != nil {
		t.Fatal(err)
	}

	b, err := NewSQLiteStore(path, "agent-b")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	entry, err := b.Get(ctx, "shared_key")
	if err != nil {
		t.Fatal(err)
	}
	if entry != nil {
		t.Error("agent-b should not see agent-a's entries")
	}

	count, err := b.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("agent-b should count 0 entries, got %d", count)
	}
}
