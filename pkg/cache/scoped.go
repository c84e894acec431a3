package cache

import (
	"context"
	"time"
)

// Scoped wraps a Cache with a key prefix for namespace isolation.
// Serve deployments use it to keep per-tenant resource maps apart on a
// shared Redis or Mongo backend without separate connections.
//
// Example usage:
//
//	shared, _ := NewRedisCache(ctx, cfg)
//	tenant := NewScoped(shared, "tenant:abc123:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache view that prepends prefix to all keys.
func NewScoped(inner Cache, prefix string) *Scoped {
	if inner == nil {
		inner = NewMemoryCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Get retrieves a value under the prefixed key.
func (c *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a value under the prefixed key.
func (c *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes the prefixed key.
func (c *Scoped) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the underlying cache.
func (c *Scoped) Close() error {
	return c.inner.Close()
}

// ScopedSet wraps a SeenSet with a member prefix, mirroring [Scoped].
type ScopedSet struct {
	inner  SeenSet
	prefix string
}

// NewScopedSet creates a set view that prepends prefix to all members.
func NewScopedSet(inner SeenSet, prefix string) *ScopedSet {
	if inner == nil {
		inner = NewMemorySet()
	}
	return &ScopedSet{inner: inner, prefix: prefix}
}

// Has reports membership of the prefixed member.
func (s *ScopedSet) Has(ctx context.Context, member string) (bool, error) {
	return s.inner.Has(ctx, s.prefix+member)
}

// Add records the prefixed member.
func (s *ScopedSet) Add(ctx context.Context, member string) error {
	return s.inner.Add(ctx, s.prefix+member)
}

// Close closes the underlying set.
func (s *ScopedSet) Close() error {
	return s.inner.Close()
}

// Ensure the scoped wrappers implement their interfaces.
var (
	_ Cache   = (*Scoped)(nil)
	_ SeenSet = (*ScopedSet)(nil)
)
