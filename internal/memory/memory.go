package memory

import (
	"context"
	"strings"
	"time"
)

// Category classifies a memory entry. The well-known categories have
// constants below; any other label is a custom category and round-trips
// unchanged (lowercased), so unrecognized labels are never rejected or
// coerced.
type Category string

const (
	CategoryCore         Category = "core"
	CategoryDaily        Category = "daily"
	CategoryConversation Category = "conversation"
)

// ParseCategory normalizes a category label. Known labels map to their
// constants; everything else becomes a custom category.
func ParseCategory(s string) Category {
	switch lower := strings.ToLower(strings.TrimSpace(s)); lower {
	case string(CategoryCore):
		return CategoryCore
	case string(CategoryDaily):
		return CategoryDaily
	case string(CategoryConversation):
		return CategoryConversation
	default:
		return Category(lower)
	}
}

// IsCustom reports whether c is outside the well-known category set.
func (c Category) IsCustom() bool {
	return c != CategoryCore && c != CategoryDaily && c != CategoryConversation
}

// Entry is a single keyed memory fact scoped to an agent.
type Entry struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Content   string    `json:"content"`
	Category  Category  `json:"category"`
	SessionID string    `json:"session_id,omitempty"` // empty = not session-scoped
	UpdatedAt time.Time `json:"updated_at"`

	// Score is populated only on recall results: similarity in [0,1] for
	// vector matches, a fixed nominal score for keyword matches. Zero on
	// stored and listed entries.
	Score float64 `json:"score,omitempty"`
}

// UpsertRecord carries the fields written by an upsert. A nil Embedding
// means "no vector for this write"; backends keep any previously stored
// vector in that case.
type UpsertRecord struct {
	Key       string
	Content   string
	Category  Category
	SessionID string
	Embedding []float32
}

// ListFilter restricts List results. Zero values mean "no filter".
type ListFilter struct {
	Category  Category
	SessionID string
}

// Match pairs an entry with its cosine distance to a query vector.
type Match struct {
	Entry    Entry
	Distance float64
}

// Store is the backing-store capability contract consumed by Manager.
// Implementations own the (agent, key) namespace; all entries visible
// through a Store belong to a single agent.
//
// Backends: SQLiteStore (persistent row store) and ChromemStore
// (in-memory, zero setup). New backends implement this interface without
// touching the recall logic in Manager.
type Store interface {
	// Name identifies the backend (e.g. "sqlite").
	Name() string

	// Upsert inserts or updates the entry for rec.Key. Updates preserve
	// the entry ID and creation time and refresh everything else.
	Upsert(ctx context.Context, rec UpsertRecord) error

	// Get returns the entry for key, or nil if absent. Implementations
	// bump an access counter as a side effect; that bump is best-effort
	// and must never fail the read.
	Get(ctx context.Context, key string) (*Entry, error)

	// List returns entries matching the filter, most recently updated
	// first.
	List(ctx context.Context, filter ListFilter) ([]Entry, error)

	// Delete removes the entry for key, reporting whether one existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Count returns the total number of entries for the agent.
	Count(ctx context.Context) (int, error)

	// VectorSearch ranks entries that have a stored vector by cosine
	// distance to queryVec, ascending, truncated to limit. Entries
	// without a vector are invisible to this call. A non-empty sessionID
	// restricts results to that session.
	VectorSearch(ctx context.Context, queryVec []float32, limit int, sessionID string) ([]Match, error)

	// KeywordSearch returns entries whose content or key contains query
	// (case-insensitive), most recently updated first, truncated to
	// limit. A non-empty sessionID restricts results to that session.
	KeywordSearch(ctx context.Context, query string, limit int, sessionID string) ([]Entry, error)

	// HealthCheck reports whether the backing store is reachable.
	HealthCheck(ctx context.Context) bool

	// Close releases any resources held by the store.
	Close() error
}
