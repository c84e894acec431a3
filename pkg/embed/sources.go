package embed

import (
	"context"
	"fmt"
	"strings"
	"sync"

	cssast "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/sync/errgroup"

	"github.com/fontsnap/fontsnap/pkg/csstext"
	"github.com/fontsnap/fontsnap/pkg/document"
)

// acquireImports materializes every @import target found inside the
// document's inline style blocks as a loaded stylesheet, so stylesheet
// enumeration sees them. Imports matching the icon-font predicate or
// already loaded (exact URL equality) are skipped. All fetches run
// concurrently; a failed import is logged and dropped rather than
// aborting the run.
func (e *Engine) acquireImports(ctx context.Context, doc *document.Document) {
	type acquired struct {
		href string
		text string
	}

	var mu sync.Mutex
	var results []acquired
	g, gctx := errgroup.WithContext(ctx)

	for _, sheet := range doc.Stylesheets() {
		if !sheet.Inline() {
			continue
		}
		for _, target := range csstext.ImportURLs(sheet.Text) {
			href := csstext.Resolve(doc.BaseURL(), target)
			if e.isIconFont(href) {
				e.logger.Debug("skipping icon font import", "url", href)
				continue
			}
			if doc.HasStylesheet(href) {
				continue
			}
			g.Go(func() error {
				text, err := e.fetcher.Text(gctx, href)
				if err != nil {
					e.logger.Warn("import fetch failed", "url", href, "error", err)
					return nil
				}
				mu.Lock()
				results = append(results, acquired{href: href, text: text})
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	for _, r := range results {
		if !doc.HasStylesheet(r.href) {
			doc.AddStylesheet(r.href, r.text)
		}
	}
}

// aggregateExternal processes every linked stylesheet: fetches its text
// when not already materialized, excludes icon font sheets wholesale,
// and rewrites the body with the sheet's own href as base URL. Fetch
// failures skip just that sheet.
func (e *Engine) aggregateExternal(ctx context.Context, doc *document.Document) []string {
	sheets := doc.Stylesheets()
	blocks := make([]string, len(sheets))
	g, gctx := errgroup.WithContext(ctx)

	for i, sheet := range sheets {
		if sheet.Inline() {
			continue
		}
		if e.isIconFont(sheet.Href) {
			e.logger.Debug("skipping icon font stylesheet", "url", sheet.Href)
			continue
		}
		i, sheet := i, sheet
		g.Go(func() error {
			text := sheet.Text
			if text == "" {
				var err error
				text, err = e.fetcher.Text(gctx, sheet.Href)
				if err != nil {
					e.logger.Warn("stylesheet fetch failed", "url", sheet.Href, "error", err)
					return nil
				}
				sheet.SetText(text)
			}
			if e.isIconFont(text) {
				e.logger.Debug("skipping icon font stylesheet", "url", sheet.Href)
				return nil
			}
			blocks[i] = e.rewriteCSS(gctx, text, sheet.Href)
			return nil
		})
	}
	_ = g.Wait()

	return compactBlocks(blocks)
}

// aggregateInlineRules enumerates @font-face rules in every stylesheet
// not covered by the external pass (inline style blocks) and emits a
// synthesized rule per face, with url() references inlined. Unparsable
// sheets are logged and skipped.
func (e *Engine) aggregateInlineRules(ctx context.Context, doc *document.Document) []string {
	var blocks []string
	for _, sheet := range doc.Stylesheets() {
		if !sheet.Inline() || sheet.Text == "" {
			continue
		}
		parsed, err := parser.Parse(sheet.Text)
		if err != nil {
			e.logger.Warn("stylesheet rules inaccessible", "error", err)
			continue
		}
		for _, rule := range parsed.Rules {
			if rule.Kind != cssast.AtRule || strings.ToLower(rule.Name) != "@font-face" {
				continue
			}
			if block, ok := e.fontFaceBlock(ctx, rule, doc.BaseURL()); ok {
				blocks = append(blocks, block)
			}
		}
	}
	return blocks
}

// fontFaceBlock turns one @font-face rule into a synthesized block with
// its src inlined. Rules without a src, and icon font families, produce
// nothing. A src carrying only local(...) references is preserved
// verbatim with no fetch.
func (e *Engine) fontFaceBlock(ctx context.Context, rule *cssast.Rule, baseURL string) (string, bool) {
	var family, src, style, weight string
	for _, decl := range rule.Declarations {
		switch strings.ToLower(decl.Property) {
		case "font-family":
			family = strings.TrimSpace(decl.Value)
		case "src":
			src = strings.TrimSpace(decl.Value)
		case "font-style":
			style = strings.TrimSpace(decl.Value)
		case "font-weight":
			weight = strings.TrimSpace(decl.Value)
		}
	}
	if src == "" {
		return "", false
	}
	if e.isIconFont(family) {
		e.logger.Debug("skipping icon font face", "family", family)
		return "", false
	}
	if csstext.HasURLReference(src) {
		src = e.rewriteCSS(ctx, src, baseURL)
	}
	return fontFaceRule(family, src, style, weight), true
}

// aggregateDynamicFonts emits a synthesized @font-face rule for every
// loaded font in the document's registry whose out-of-band source URL is
// recorded, inlining the source through the shared stores. Fonts whose
// source cannot be inlined are skipped.
func (e *Engine) aggregateDynamicFonts(ctx context.Context, doc *document.Document) []string {
	fonts := doc.Fonts()
	blocks := make([]string, len(fonts))
	g, gctx := errgroup.WithContext(ctx)

	for i, font := range fonts {
		if font.Status != document.FontStatusLoaded || font.Source == "" {
			continue
		}
		if e.isIconFont(font.Family) {
			e.logger.Debug("skipping icon font", "family", font.Family)
			continue
		}
		i, font := i, font
		g.Go(func() error {
			data, ok := e.resolveInline(gctx, font.Source)
			if !ok {
				return nil
			}
			blocks[i] = fontFaceRule(font.Family, "url("+data+")", font.Style, font.Weight)
			return nil
		})
	}
	_ = g.Wait()

	return compactBlocks(blocks)
}

// fontFaceRule formats a synthesized @font-face block, defaulting style
// and weight to normal when absent.
func fontFaceRule(family, src, style, weight string) string {
	if style == "" {
		style = "normal"
	}
	if weight == "" {
		weight = "normal"
	}
	return fmt.Sprintf("@font-face{font-family:%s;src:%s;font-style:%s;font-weight:%s;}", family, src, style, weight)
}

// compactBlocks drops empty slots while preserving source order.
func compactBlocks(blocks []string) []string {
	out := blocks[:0]
	for _, b := range blocks {
		if b != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
