// Package cache provides an in-memory response cache that avoids burning
// tokens on repeated prompts. Entries expire after a TTL and are evicted
// least-recently-used once the cache is over capacity. The cache is
// process-local and intentionally volatile: nothing survives restart.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// entry is a single cached model response.
type entry struct {
	model      string
	response   string
	tokenCount int
	createdAt  time.Time
	accessedAt time.Time
	hitCount   uint64
}

// Cache is a TTL + LRU response cache guarded by a single exclusive lock.
// All operations are pure in-memory computation, so serializing them is
// cheap even under concurrent access.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	ttl        time.Duration
	maxEntries int
}

// Stats summarizes cache effectiveness. TokensSaved assumes each hit
// fully avoided one equivalent-cost model call.
type Stats struct {
	Entries     int
	Hits        uint64
	TokensSaved uint64
}

// New creates a cache. Entries older than ttl are expired (ttl = 0
// expires everything immediately); maxEntries caps the entry count, with
// 0 meaning the cache accepts puts but retains nothing.
func New(ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Key builds a deterministic cache key from model + system prompt + user
// prompt. The fields are hashed in order with a fixed separator, so any
// single field changing changes the key. This is a dedup fingerprint, not
// a security credential.
func Key(model, systemPrompt, userPrompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte("|"))
	h.Write([]byte(systemPrompt))
	h.Write([]byte("|"))
	h.Write([]byte(userPrompt))
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up a cached response. An expired entry found during lookup is
// deleted immediately and treated as a miss. A hit bumps the entry's hit
// count and access time.
func (c *Cache) Get(key string) (string, bool) {
	now := time.Now()
	cutoff := now.Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !e.createdAt.After(cutoff) {
		delete(c.entries, key)
		return "", false
	}

	e.hitCount++
	e.accessedAt = now
	return e.response, true
}

// Put inserts or replaces the entry for key, then sweeps expired entries
// and evicts least-recently-accessed ones until the cache is at or under
// capacity.
func (c *Cache) Put(key, model, response string, tokenCount int) {
	now := time.Now()
	cutoff := now.Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		model:      model,
		response:   response,
		tokenCount: tokenCount,
		createdAt:  now,
		accessedAt: now,
	}

	for k, e := range c.entries {
		if !e.createdAt.After(cutoff) {
			delete(c.entries, k)
		}
	}

	for len(c.entries) > c.maxEntries {
		var lruKey string
		var lruTime time.Time
		first := true
		for k, e := range c.entries {
			if first || e.accessedAt.Before(lruTime) {
				lruKey = k
				lruTime = e.accessedAt
				first = false
			}
		}
		delete(c.entries, lruKey)
	}
}

// Stats returns the entry count, total hits, and total tokens saved.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{Entries: len(c.entries)}
	for _, e := range c.entries {
		stats.Hits += e.hitCount
		stats.TokensSaved += e.hitCount * uint64(e.tokenCount)
	}
	return stats
}

// Clear empties the cache and returns how many entries were removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := len(c.entries)
	c.entries = make(map[string]*entry)
	return count
}
