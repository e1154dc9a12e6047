package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	mnemoErrors "github.com/mnemo-oss/mnemo/internal/errors"
)

// ChromemStore is an in-memory backend backed by chromem-go for vector
// ranking. Entries live in a map owned by the store; the chromem
// collection only indexes entries that have a vector. Nothing survives
// process restart — this is the zero-setup driver and the test backend.
type ChromemStore struct {
	mu      sync.RWMutex
	col     *chromem.Collection
	agentID string
	byKey   map[string]*chromemRecord
	byID    map[string]string // memory_id -> key
}

type chromemRecord struct {
	entry       Entry
	embedding   []float32
	accessCount int
	indexed     bool
}

// NewChromemStore creates an in-memory store scoped to agentID.
func NewChromemStore(agentID string) (*ChromemStore, error) {
	collectionName := fmt.Sprintf("agent_%s", agentID)
	if agentID == "" {
		collectionName = "global"
	}

	// No embedding func and no custom distance: embeddings are always
	// supplied by the caller and the default metric is cosine.
	col, err := chromem.NewDB().CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "failed to create collection", err)
	}

	return &ChromemStore{
		col:     col,
		agentID: agentID,
		byKey:   make(map[string]*chromemRecord),
		byID:    make(map[string]string),
	}, nil
}

// Name identifies the backend.
func (s *ChromemStore) Name() string {
	return "chromem"
}

// Upsert inserts or updates the record for rec.Key, preserving the entry
// ID on update. The chromem document is rebuilt whenever the record has a
// vector so its metadata stays in sync with the entry.
func (s *ChromemStore) Upsert(ctx context.Context, rec UpsertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	record, exists := s.byKey[rec.Key]
	if !exists {
		record = &chromemRecord{entry: Entry{ID: uuid.New().String(), Key: rec.Key}}
		s.byKey[rec.Key] = record
		s.byID[record.entry.ID] = rec.Key
	}

	record.entry.Content = rec.Content
	record.entry.Category = rec.Category
	record.entry.SessionID = rec.SessionID
	record.entry.UpdatedAt = now
	if rec.Embedding != nil {
		record.embedding = append([]float32(nil), rec.Embedding...)
	}

	if record.embedding == nil {
		return nil
	}

	if record.indexed {
		if err := s.col.Delete(ctx, nil, nil, record.entry.ID); err != nil {
			return mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "failed to reindex document", err)
		}
		record.indexed = false
	}
	err := s.col.AddDocument(ctx, chromem.Document{
		ID:        record.entry.ID,
		Content:   rec.Content,
		Embedding: record.embedding,
		Metadata: map[string]string{
			"key":        rec.Key,
			"session_id": rec.SessionID,
		},
	})
	if err != nil {
		return mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "failed to add document", err)
	}
	record.indexed = true
	return nil
}

// Get returns a copy of the entry for key, or nil if absent.
func (s *ChromemStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	record.accessCount++
	entry := record.entry
	return &entry, nil
}

// List returns entries matching the filter, most recently updated first.
func (s *ChromemStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []Entry
	for _, record := range s.byKey {
		if filter.Category != "" && record.entry.Category != filter.Category {
			continue
		}
		if filter.SessionID != "" && record.entry.SessionID != filter.SessionID {
			continue
		}
		entries = append(entries, record.entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

// Delete removes the entry for key, reporting whether one existed.
func (s *ChromemStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byKey[key]
	if !ok {
		return false, nil
	}
	delete(s.byKey, key)
	delete(s.byID, record.entry.ID)

	if record.indexed {
		if err := s.col.Delete(ctx, nil, nil, record.entry.ID); err != nil {
			return true, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "failed to delete document", err)
		}
	}
	return true, nil
}

// Count returns the total number of entries.
func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey), nil
}

// VectorSearch ranks indexed entries by cosine distance to queryVec.
func (s *ChromemStore) VectorSearch(ctx context.Context, queryVec []float32, limit int, sessionID string) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return nil, nil
	}
	n := limit
	if docs := s.col.Count(); docs < n {
		n = docs
	}
	if n == 0 {
		return nil, nil
	}

	var where map[string]string
	if sessionID != "" {
		where = map[string]string{"session_id": sessionID}
	}

	// chromem requires nResults <= matching documents; retry with
	// smaller limits until the query fits.
	var results []chromem.Result
	for ; n >= 1; n-- {
		var err error
		results, err = s.col.QueryEmbedding(ctx, queryVec, n, where, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if n == 1 {
				return nil, nil
			}
			continue
		}
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "vector query failed", err)
	}

	matches := make([]Match, 0, len(results))
	for _, result := range results {
		key, ok := s.byID[result.ID]
		if !ok {
			continue
		}
		record, ok := s.byKey[key]
		if !ok {
			continue
		}
		matches = append(matches, Match{
			Entry:    record.entry,
			Distance: 1 - float64(result.Similarity),
		})
	}
	return matches, nil
}

// KeywordSearch returns entries whose content or key contains query
// (case-insensitive), most recently updated first.
func (s *ChromemStore) KeywordSearch(ctx context.Context, query string, limit int, sessionID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return nil, nil
	}

	needle := strings.ToLower(query)
	var entries []Entry
	for _, record := range s.byKey {
		if sessionID != "" && record.entry.SessionID != sessionID {
			continue
		}
		if !strings.Contains(strings.ToLower(record.entry.Content), needle) &&
			!strings.Contains(strings.ToLower(record.entry.Key), needle) {
			continue
		}
		entries = append(entries, record.entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// HealthCheck always succeeds: the store is process-local.
func (s *ChromemStore) HealthCheck(ctx context.Context) bool {
	return true
}

// Close is a no-op; chromem keeps everything in memory.
func (s *ChromemStore) Close() error {
	return nil
}

// isInsufficientDocsError reports whether err is chromem complaining that
// nResults exceeds the number of matching documents.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
