package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mnemoErrors "github.com/mnemo-oss/mnemo/internal/errors"
)

// SQLiteStore persists memory entries in a SQLite database, one row per
// (agent, key). Embedding vectors are stored alongside the row in text
// form; ranking against a query vector happens in VectorSearch since
// SQLite has no native vector type.
type SQLiteStore struct {
	db      *sql.DB
	agentID string
}

// NewSQLiteStore opens (or creates) the database at path, scoped to agentID.
func NewSQLiteStore(path, agentID string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "failed to open memory database", err)
	}

	// Single shared connection avoids writer lock contention under
	// concurrent goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, agentID: agentID}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "failed to migrate memory database", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		memory_id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		key TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL,
		session_id TEXT,
		embedding TEXT,
		access_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE(agent_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_memories_agent ON memories(agent_id, updated_at);
	CREATE INDEX IF NOT EXISTS idx_memories_session ON memories(agent_id, session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Name identifies the backend.
func (s *SQLiteStore) Name() string {
	return "sqlite"
}

// Upsert inserts or updates the row for rec.Key. An update preserves
// memory_id and created_at; when rec.Embedding is nil any previously
// stored vector is kept.
func (s *SQLiteStore) Upsert(ctx context.Context, rec UpsertRecord) error {
	now := time.Now().UTC()

	var err error
	if rec.Embedding != nil {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO memories (memory_id, agent_id, key, content, category, session_id, embedding, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(agent_id, key) DO UPDATE SET
				content    = excluded.content,
				category   = excluded.category,
				session_id = excluded.session_id,
				embedding  = excluded.embedding,
				updated_at = excluded.updated_at
		`, uuid.New().String(), s.agentID, rec.Key, rec.Content, string(rec.Category),
			nullableString(rec.SessionID), EncodeVector(rec.Embedding), now, now)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO memories (memory_id, agent_id, key, content, category, session_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(agent_id, key) DO UPDATE SET
				content    = excluded.content,
				category   = excluded.category,
				session_id = excluded.session_id,
				updated_at = excluded.updated_at
		`, uuid.New().String(), s.agentID, rec.Key, rec.Content, string(rec.Category),
			nullableString(rec.SessionID), now, now)
	}
	if err != nil {
		return mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, fmt.Sprintf("failed to store memory %q", rec.Key), err)
	}
	return nil
}

// Get returns the entry for key, or nil if absent. The access counter
// bump is best-effort and never fails the read.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT memory_id, key, content, category, session_id, updated_at
		FROM memories
		WHERE agent_id = ? AND key = ?
	`, s.agentID, key)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, fmt.Sprintf("failed to get memory %q", key), err)
	}

	_, _ = s.db.ExecContext(ctx, `
		UPDATE memories SET access_count = access_count + 1
		WHERE agent_id = ? AND key = ?
	`, s.agentID, key)

	return entry, nil
}

// List returns entries matching the filter, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := `
		SELECT memory_id, key, content, category, session_id, updated_at
		FROM memories
		WHERE agent_id = ?`
	args := []any{s.agentID}

	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "failed to list memories", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// Delete removes the entry for key, reporting whether a row was removed.
func (s *SQLiteStore) Delete(ctx context.Context, key string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM memories WHERE agent_id = ? AND key = ?", s.agentID, key)
	if err != nil {
		return false, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, fmt.Sprintf("failed to delete memory %q", key), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the total number of entries for the agent.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memories WHERE agent_id = ?", s.agentID).Scan(&count)
	if err != nil {
		return 0, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "failed to count memories", err)
	}
	return count, nil
}

// VectorSearch ranks rows that carry a vector by cosine distance to
// queryVec, ascending, truncated to limit. Rows whose stored vector fails
// to parse or has a different dimension are skipped.
func (s *SQLiteStore) VectorSearch(ctx context.Context, queryVec []float32, limit int, sessionID string) ([]Match, error) {
	if limit <= 0 || len(queryVec) == 0 {
		return nil, nil
	}

	query := `
		SELECT memory_id, key, content, category, session_id, updated_at, embedding
		FROM memories
		WHERE agent_id = ? AND embedding IS NOT NULL`
	args := []any{s.agentID}
	if sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "vector search query failed", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var entry Entry
		var sid sql.NullString
		var encoded string
		if err := rows.Scan(&entry.ID, &entry.Key, &entry.Content, (*categoryScanner)(&entry.Category),
			&sid, &entry.UpdatedAt, &encoded); err != nil {
			return nil, err
		}
		entry.SessionID = sid.String

		vec, err := ParseVector(encoded)
		if err != nil || len(vec) != len(queryVec) {
			continue
		}
		matches = append(matches, Match{Entry: entry, Distance: CosineDistance(queryVec, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// KeywordSearch returns rows whose content or key contains query
// (case-insensitive LIKE), most recently updated first.
func (s *SQLiteStore) KeywordSearch(ctx context.Context, query string, limit int, sessionID string) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"
	sqlQuery := `
		SELECT memory_id, key, content, category, session_id, updated_at
		FROM memories
		WHERE agent_id = ? AND (LOWER(content) LIKE ? OR LOWER(key) LIKE ?)`
	args := []any{s.agentID, pattern, pattern}
	if sessionID != "" {
		sqlQuery += " AND session_id = ?"
		args = append(args, sessionID)
	}
	sqlQuery += " ORDER BY updated_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, mnemoErrors.Wrap(mnemoErrors.CodeBackingStore, "keyword search query failed", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// HealthCheck reports whether the database answers a ping.
func (s *SQLiteStore) HealthCheck(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for scanEntry.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry maps the common column order (memory_id, key, content,
// category, session_id, updated_at) to an Entry.
func scanEntry(row scanner) (*Entry, error) {
	var entry Entry
	var sid sql.NullString
	if err := row.Scan(&entry.ID, &entry.Key, &entry.Content, (*categoryScanner)(&entry.Category),
		&sid, &entry.UpdatedAt); err != nil {
		return nil, err
	}
	entry.SessionID = sid.String
	return &entry, nil
}

// categoryScanner lets Category be scanned directly from a TEXT column.
type categoryScanner Category

func (c *categoryScanner) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*c = categoryScanner(ParseCategory(v))
	case []byte:
		*c = categoryScanner(ParseCategory(string(v)))
	default:
		return fmt.Errorf("cannot scan category from %T", src)
	}
	return nil
}

// nullableString maps "" to NULL so absent sessions stay NULL in the row.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
