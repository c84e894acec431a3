package cache

import (
	"context"
	"time"
)

// NullCache is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
// Note that disabling the resource cache also disables the at-most-once
// fetch guarantee across calls; within a single rewrite, token
// deduplication still applies.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// NullSet is a no-op SeenSet that never records anything.
type NullSet struct{}

// NewNullSet creates a null set.
func NewNullSet() *NullSet {
	return &NullSet{}
}

// Has always reports absence.
func (s *NullSet) Has(ctx context.Context, member string) (bool, error) {
	return false, nil
}

// Add does nothing.
func (s *NullSet) Add(ctx context.Context, member string) error {
	return nil
}

// Close does nothing.
func (s *NullSet) Close() error {
	return nil
}

// Ensure the null backends implement their interfaces.
var (
	_ Cache   = (*NullCache)(nil)
	_ SeenSet = (*NullSet)(nil)
)
