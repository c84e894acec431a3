package cache

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	// Miss on empty cache
	_, hit, err := c.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get should miss on empty cache")
	}

	// Set then Get
	if err := c.Set(ctx, "url", []byte("data:font/woff2;base64,AAAA"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "url")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Get should hit after Set")
	}
	if !bytes.Equal(data, []byte("data:font/woff2;base64,AAAA")) {
		t.Errorf("Get returned %q", data)
	}

	// Delete
	if err := c.Delete(ctx, "url"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "url")
	if hit {
		t.Error("Get should miss after Delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	if err := c.Set(ctx, "key", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Fatal("entry should be fresh immediately after Set")
	}

	time.Sleep(20 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry should expire after TTL")
	}
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	if err := c.Set(ctx, "key", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Error("zero-TTL entry should never expire")
	}
}

func TestMemoryCache_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	// All writers for the same key converge on the same value, so
	// last-write-wins must leave the value intact.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "shared", []byte("same-bytes"), 0)
			_, _, _ = c.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	data, hit, err := c.Get(ctx, "shared")
	if err != nil || !hit {
		t.Fatalf("Get = %v, %v; want hit", hit, err)
	}
	if string(data) != "same-bytes" {
		t.Errorf("got %q, want %q", data, "same-bytes")
	}
}

func TestMemorySet(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySet()
	defer s.Close()

	ok, err := s.Has(ctx, "url")
	if err != nil {
		t.Fatalf("Has error: %v", err)
	}
	if ok {
		t.Error("Has should report absence on empty set")
	}

	if err := s.Add(ctx, "url"); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	// Adding twice is a no-op
	if err := s.Add(ctx, "url"); err != nil {
		t.Fatalf("second Add error: %v", err)
	}

	ok, err = s.Has(ctx, "url")
	if err != nil {
		t.Fatalf("Has error: %v", err)
	}
	if !ok {
		t.Error("Has should report presence after Add")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	tests := []struct {
		name string
		key  string
		data []byte
	}{
		{"data uri", "https://x/fonts/a.woff2", []byte("data:font/woff2;base64,AAAA")},
		{"empty value", "https://x/fonts/b.woff2", []byte{}},
		{"long key", "https://example.com/very/long/path/with?query=params&more=stuff", []byte("v")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(ctx, tt.key, tt.data, 0); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			data, hit, err := c.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if !hit {
				t.Fatal("Get() returned miss for existing key")
			}
			if !bytes.Equal(data, tt.data) {
				t.Errorf("Get() = %q, want %q", data, tt.data)
			}
		})
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if hit {
		t.Error("Get() returned hit for expired key")
	}
}

func TestFileSet(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileSet(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSet: %v", err)
	}

	if ok, _ := s.Has(ctx, "https://x/f.woff2"); ok {
		t.Error("Has should report absence before Add")
	}
	if err := s.Add(ctx, "https://x/f.woff2"); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if ok, _ := s.Has(ctx, "https://x/f.woff2"); !ok {
		t.Error("Has should report presence after Add")
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestNullSet(t *testing.T) {
	ctx := context.Background()
	s := NewNullSet()

	if err := s.Add(ctx, "member"); err != nil {
		t.Errorf("Add error: %v", err)
	}
	if ok, _ := s.Has(ctx, "member"); ok {
		t.Error("NullSet should not record members")
	}
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryCache()

	a := NewScoped(shared, "a:")
	b := NewScoped(shared, "b:")

	if err := a.Set(ctx, "url", []byte("va"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Same key under a different prefix must not collide
	if _, hit, _ := b.Get(ctx, "url"); hit {
		t.Error("prefixes should isolate keys")
	}
	data, hit, _ := a.Get(ctx, "url")
	if !hit || string(data) != "va" {
		t.Errorf("Get = %q, %v; want va, true", data, hit)
	}

	// Underlying store sees the prefixed key
	if _, hit, _ := shared.Get(ctx, "a:url"); !hit {
		t.Error("underlying cache should hold the prefixed key")
	}
}

func TestScopedSet(t *testing.T) {
	ctx := context.Background()
	shared := NewMemorySet()

	a := NewScopedSet(shared, "a:")
	b := NewScopedSet(shared, "b:")

	if err := a.Add(ctx, "url"); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if ok, _ := b.Has(ctx, "url"); ok {
		t.Error("prefixes should isolate members")
	}
	if ok, _ := a.Has(ctx, "url"); !ok {
		t.Error("Has should report presence under the same prefix")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}
