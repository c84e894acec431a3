// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about embed runs, cache operations, and resource fetches.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEmbedHooks(&myEmbedHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Embed().OnEmbedStart(ctx, docURL)
//	// ... run discovery ...
//	observability.Embed().OnEmbedComplete(ctx, docURL, len(css), duration, cached)
package observability

import (
	"context"
	"sync"
	"time"
)

// EmbedHooks receives events from the font embedding engine.
type EmbedHooks interface {
	// OnEmbedStart records the beginning of an embed run for a document.
	OnEmbedStart(ctx context.Context, docURL string)

	// OnSourceComplete records the completion of one source aggregator
	// (imports, links, rules, fonts) with the number of CSS blocks it produced.
	OnSourceComplete(ctx context.Context, source string, blocks int, duration time.Duration)

	// OnEmbedComplete records the end of an embed run. cached reports a
	// full-result memo hit that short-circuited discovery.
	OnEmbedComplete(ctx context.Context, docURL string, cssSize int, duration time.Duration, cached bool)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from resource fetch operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopEmbedHooks is a no-op implementation of EmbedHooks.
type NoopEmbedHooks struct{}

func (NoopEmbedHooks) OnEmbedStart(context.Context, string)                              {}
func (NoopEmbedHooks) OnSourceComplete(context.Context, string, int, time.Duration)      {}
func (NoopEmbedHooks) OnEmbedComplete(context.Context, string, int, time.Duration, bool) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	embedHooks EmbedHooks = NoopEmbedHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetEmbedHooks registers custom embed hooks.
// This should be called once at application startup before any embed operations.
func SetEmbedHooks(h EmbedHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		embedHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any fetch operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Embed returns the registered embed hooks.
func Embed() EmbedHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return embedHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	embedHooks = NoopEmbedHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
