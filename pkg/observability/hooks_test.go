package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEmbedHooks{}
	e.OnEmbedStart(ctx, "https://example.com/")
	e.OnSourceComplete(ctx, "links", 2, time.Second)
	e.OnEmbedComplete(ctx, "https://example.com/", 1024, time.Second, false)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "resource")
	c.OnCacheMiss(ctx, "result")
	c.OnCacheSet(ctx, "resource", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "fonts.gstatic.com", "/s/inter/x.woff2")
	h.OnResponse(ctx, "GET", "fonts.gstatic.com", "/s/inter/x.woff2", 200, time.Second)
	h.OnError(ctx, "GET", "fonts.gstatic.com", "/s/inter/x.woff2", nil)
}

type testEmbedHooks struct {
	starts, completes int
}

func (h *testEmbedHooks) OnEmbedStart(context.Context, string)                         { h.starts++ }
func (h *testEmbedHooks) OnSourceComplete(context.Context, string, int, time.Duration) {}
func (h *testEmbedHooks) OnEmbedComplete(context.Context, string, int, time.Duration, bool) {
	h.completes++
}

type testCacheHooks struct {
	hits int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *testCacheHooks) OnCacheMiss(context.Context, string)     {}
func (h *testCacheHooks) OnCacheSet(context.Context, string, int) {}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	// Defaults are noop
	if _, ok := Embed().(NoopEmbedHooks); !ok {
		t.Error("Embed() should return NoopEmbedHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Custom hooks are returned after registration
	custom := &testEmbedHooks{}
	SetEmbedHooks(custom)
	Embed().OnEmbedStart(context.Background(), "https://example.com/")
	if custom.starts != 1 {
		t.Errorf("custom hook starts = %d, want 1", custom.starts)
	}

	cacheCustom := &testCacheHooks{}
	SetCacheHooks(cacheCustom)
	Cache().OnCacheHit(context.Background(), "resource")
	if cacheCustom.hits != 1 {
		t.Errorf("custom cache hits = %d, want 1", cacheCustom.hits)
	}

	// Nil registration keeps the current hooks
	SetEmbedHooks(nil)
	if _, ok := Embed().(*testEmbedHooks); !ok {
		t.Error("SetEmbedHooks(nil) should keep current hooks")
	}

	// Reset restores noop
	Reset()
	if _, ok := Embed().(NoopEmbedHooks); !ok {
		t.Error("Reset() should restore NoopEmbedHooks")
	}
}
