// Package embed implements the font-resolution and inlining engine.
//
// The engine discovers every custom font a document references across its
// four declaration sources (inline style blocks, external stylesheet
// links, stylesheets acquired through @import, and dynamically registered
// fonts), resolves each font binary at most once through shared stores,
// rewrites the CSS so font references carry data: URIs, and aggregates
// the result into a single cacheable payload. All fetch and parse
// failures degrade to skipping the affected resource; the entry point
// never fails because one font was unreachable.
package embed

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fontsnap/fontsnap/pkg/cache"
	"github.com/fontsnap/fontsnap/pkg/document"
	"github.com/fontsnap/fontsnap/pkg/observability"
)

const (
	// CacheKey is the well-known key under which the aggregated CSS is
	// memoized. Its presence short-circuits all discovery.
	CacheKey = "fonts-embed-css"

	// MarkerAttr and MarkerValue tag the injected style element so
	// downstream consumers can locate or exclude it.
	MarkerAttr  = "data-fontsnap"
	MarkerValue = "embed-css"
)

// Fetcher retrieves remote resources. Satisfied by [fetch.Client];
// injected so tests can count and stub fetches.
type Fetcher interface {
	// DataURL returns the resource at url as a base64 data: URI.
	DataURL(ctx context.Context, url string) (string, error)

	// Text returns the resource at url as text.
	Text(ctx context.Context, url string) (string, error)
}

// Options controls a single embed run.
type Options struct {
	// PreCached additionally injects the aggregated CSS into the document
	// as a marked style element, instead of only returning and caching it.
	PreCached bool
}

// Engine resolves and inlines a document's custom fonts.
// Construct with [New]; the zero value is not usable.
type Engine struct {
	resources  cache.Cache
	attempts   cache.SeenSet
	fetcher    Fetcher
	isIconFont IconFontMatcher
	logger     *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithIconFontMatcher replaces the icon-font exclusion predicate.
func WithIconFontMatcher(m IconFontMatcher) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.isIconFont = m
		}
	}
}

// WithLogger sets the logger for skip and failure diagnostics.
func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine on top of the given shared stores and fetcher.
// resources holds URL → data-URI entries plus the aggregated-CSS memo;
// attempts records every URL a fetch was tried for, so failures are not
// retried for the store's lifetime.
func New(resources cache.Cache, attempts cache.SeenSet, fetcher Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		resources:  resources,
		attempts:   attempts,
		fetcher:    fetcher,
		isIconFont: DefaultIconFontMatcher,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmbedCustomFonts aggregates the document's custom fonts into one CSS
// payload with every reachable font inlined as a data: URI.
//
// The first call runs discovery and stores the result under [CacheKey];
// subsequent calls return the memoized payload verbatim without issuing
// any fetch. Individual failures (unreachable fonts, unparsable sheets)
// are logged and skipped; the returned error is reserved for context
// cancellation and is nil under all per-resource failures.
func (e *Engine) EmbedCustomFonts(ctx context.Context, doc *document.Document, opts Options) (string, error) {
	start := time.Now()
	observability.Embed().OnEmbedStart(ctx, doc.URL())

	if data, ok, err := e.resources.Get(ctx, CacheKey); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, CacheKey)
		css := string(data)
		if opts.PreCached {
			doc.InjectStyle(css, MarkerAttr, MarkerValue)
		}
		observability.Embed().OnEmbedComplete(ctx, doc.URL(), len(css), time.Since(start), true)
		return css, nil
	}
	observability.Cache().OnCacheMiss(ctx, CacheKey)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.acquireImports(ctx, doc)

	var parts []string
	for _, stage := range []struct {
		name string
		run  func(context.Context, *document.Document) []string
	}{
		{"links", e.aggregateExternal},
		{"rules", e.aggregateInlineRules},
		{"fonts", e.aggregateDynamicFonts},
	} {
		stageStart := time.Now()
		blocks := stage.run(ctx, doc)
		observability.Embed().OnSourceComplete(ctx, stage.name, len(blocks), time.Since(stageStart))
		parts = append(parts, blocks...)
	}

	css := strings.Join(parts, "\n")
	if css != "" {
		if err := e.resources.Set(ctx, CacheKey, []byte(css), 0); err != nil {
			e.logger.Warn("caching aggregated css failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, CacheKey, len(css))
		}
		if opts.PreCached {
			doc.InjectStyle(css, MarkerAttr, MarkerValue)
		}
	}

	observability.Embed().OnEmbedComplete(ctx, doc.URL(), len(css), time.Since(start), false)
	return css, nil
}
