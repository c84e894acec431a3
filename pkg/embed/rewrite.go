package embed

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fontsnap/fontsnap/pkg/csstext"
	"github.com/fontsnap/fontsnap/pkg/observability"
)

// rewriteCSS finds every url(...) token in cssText, resolves and inlines
// the referenced resources concurrently, and substitutes each matched
// token with url(<data-uri>) by literal string replacement. Every byte
// outside the matched tokens is preserved. Tokens whose resource could
// not be inlined (icon fonts, prior failures, fetch errors) are left
// untouched.
func (e *Engine) rewriteCSS(ctx context.Context, cssText, baseURL string) string {
	tokens := csstext.URLTokens(cssText)
	if len(tokens) == 0 {
		return cssText
	}

	// Group tokens by resolved URL so each resource resolves once even
	// when quoted and unquoted tokens reference the same file.
	tokensByURL := make(map[string][]string)
	var order []string
	for _, token := range tokens {
		raw, ok := csstext.ExtractURL(token)
		if !ok {
			continue
		}
		if csstext.IsDataURL(raw) {
			continue
		}
		resolved := csstext.Resolve(baseURL, raw)
		if e.isIconFont(resolved) || e.isIconFont(token) {
			e.logger.Debug("skipping icon font reference", "url", resolved)
			continue
		}
		if _, known := tokensByURL[resolved]; !known {
			order = append(order, resolved)
		}
		tokensByURL[resolved] = append(tokensByURL[resolved], token)
	}

	var mu sync.Mutex
	inlined := make(map[string]string, len(order))
	g, gctx := errgroup.WithContext(ctx)
	for _, resolved := range order {
		resolved := resolved
		g.Go(func() error {
			data, ok := e.resolveInline(gctx, resolved)
			if !ok {
				return nil
			}
			mu.Lock()
			inlined[resolved] = data
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	out := cssText
	for _, resolved := range order {
		data, ok := inlined[resolved]
		if !ok {
			continue
		}
		for _, token := range tokensByURL[resolved] {
			out = strings.ReplaceAll(out, token, "url("+data+")")
		}
	}
	return out
}

// resolveInline turns an absolute resource URL into its data: URI via
// the shared stores: cache hit substitutes without a fetch, a recorded
// prior attempt without a cache entry is a permanent skip, and anything
// else is fetched once and stored. The bool reports whether a usable
// inline value was produced.
func (e *Engine) resolveInline(ctx context.Context, rawurl string) (string, bool) {
	if csstext.IsDataURL(rawurl) {
		return rawurl, true
	}

	if data, ok, err := e.resources.Get(ctx, rawurl); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, rawurl)
		// Mark as a known font resource so other discovery paths don't
		// attempt a redundant fetch.
		if err := e.attempts.Add(ctx, rawurl); err != nil {
			e.logger.Debug("recording font attempt failed", "url", rawurl, "error", err)
		}
		return string(data), true
	}
	observability.Cache().OnCacheMiss(ctx, rawurl)

	if seen, err := e.attempts.Has(ctx, rawurl); err == nil && seen {
		e.logger.Debug("skipping previously failed font", "url", rawurl)
		return "", false
	}

	data, fetchErr := e.fetcher.DataURL(ctx, rawurl)
	if err := e.attempts.Add(ctx, rawurl); err != nil {
		e.logger.Debug("recording font attempt failed", "url", rawurl, "error", err)
	}
	if fetchErr != nil {
		e.logger.Warn("font fetch failed", "url", rawurl, "error", fetchErr)
		return "", false
	}

	if err := e.resources.Set(ctx, rawurl, []byte(data), 0); err != nil {
		e.logger.Warn("caching font resource failed", "url", rawurl, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, rawurl, len(data))
	}
	return data, true
}
