// Package cache provides the shared stores backing font embedding.
//
// The embedding engine depends on two stores, both injected at construction
// so the at-most-once-fetch guarantee stays testable with fakes:
//
//   - [Cache]: a key/value map from resource URL to its inlined data URI,
//     plus the aggregated-CSS memo. Once a URL is present its value is
//     permanently substitutable; entries are never re-fetched.
//   - [SeenSet]: membership of every URL for which a fetch was attempted,
//     success or failure. A member without a corresponding Cache entry
//     means a prior failure, treated as permanent for the store lifetime.
//
// Both stores are safe for concurrent use. Writers for the same URL always
// converge on the same bytes, so last-write-wins is correct without
// coordination beyond the backend's own synchronization.
//
// Backends:
//   - memory: process-local default, used by the engine when nothing is injected
//   - file: filesystem entries under the XDG cache dir, for CLI reuse across runs
//   - redis: shared store for multi-instance serve deployments
//   - mongo: durable document store for serve deployments
//   - null: caching disabled
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is the interface for resource stores.
// A TTL of 0 means the entry never expires; the embedding engine always
// passes 0 because resource and failed-attempt permanence is part of its
// correctness contract.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present
	// and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL (0 = no expiry).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SeenSet records which URLs have had a fetch attempted.
type SeenSet interface {
	// Has reports whether member was previously added.
	Has(ctx context.Context, member string) (bool, error)

	// Add records member. Adding an existing member is a no-op.
	Add(ctx context.Context, member string) error

	// Close releases backend resources.
	Close() error
}

// MemoryCache is a mutex-guarded in-process Cache.
// It is the engine default and the backend of choice for tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.data, true, nil
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries. Intended for tests and stats.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close does nothing for the memory cache.
func (c *MemoryCache) Close() error { return nil }

// MemorySet is a mutex-guarded in-process SeenSet.
type MemorySet struct {
	mu      sync.RWMutex
	members map[string]struct{}
}

// NewMemorySet creates an empty in-process set.
func NewMemorySet() *MemorySet {
	return &MemorySet{members: make(map[string]struct{})}
}

// Has reports whether member was previously added.
func (s *MemorySet) Has(ctx context.Context, member string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[member]
	return ok, nil
}

// Add records member in the set.
func (s *MemorySet) Add(ctx context.Context, member string) error {
	s.mu.Lock()
	s.members[member] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Close does nothing for the memory set.
func (s *MemorySet) Close() error { return nil }

// Ensure the memory backends implement their interfaces.
var (
	_ Cache   = (*MemoryCache)(nil)
	_ SeenSet = (*MemorySet)(nil)
)
