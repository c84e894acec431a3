// Package csstext extracts font-relevant tokens from CSS text.
//
// The embedding engine rewrites CSS by literal substring replacement of
// matched tokens, never through a full CSS object model. This package
// provides the extraction half of that contract: url() tokens via a CSS
// lexer, @import targets and quote stripping via targeted patterns.
// Callers replace only the exact token text they were handed, leaving
// every other byte of the source untouched.
package csstext

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// urlRe pulls the bare URL out of a url(...) fragment, tolerating optional
// quotes and surrounding whitespace.
var urlRe = regexp.MustCompile(`url\(\s*['"]?([^'")]*?)['"]?\s*\)`)

// importRe matches @import targets in both the url() and bare-string forms:
// @import url("a.css"); and @import "a.css";
var importRe = regexp.MustCompile(`@import\s+(?:url\(\s*)?['"]?([^'");\s]+?)['"]?\s*\)?\s*;?`)

// URLTokens returns every url(...) token in cssText, verbatim, in order of
// first appearance. Identical tokens are reported once: substitution is
// keyed by exact token text, so one replacement covers all occurrences.
func URLTokens(cssText string) []string {
	lexer := css.NewLexer(parse.NewInputString(cssText))

	var tokens []string
	seen := make(map[string]struct{})
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		if tt == css.URLToken {
			token := string(data)
			if _, ok := seen[token]; !ok {
				seen[token] = struct{}{}
				tokens = append(tokens, token)
			}
		}
	}
	return tokens
}

// ExtractURL pulls a bare URL out of a CSS fragment containing a url(...)
// token. Quotes and whitespace are stripped. The bool reports whether a
// non-empty URL was found.
func ExtractURL(fragment string) (string, bool) {
	m := urlRe.FindStringSubmatch(fragment)
	if m == nil {
		return "", false
	}
	u := strings.TrimSpace(m[1])
	return u, u != ""
}

// ImportURLs returns the target of every @import statement in cssText,
// in order of appearance. Duplicate targets are reported once.
func ImportURLs(cssText string) []string {
	var urls []string
	seen := make(map[string]struct{})
	for _, m := range importRe.FindAllStringSubmatch(cssText, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" {
			continue
		}
		if _, ok := seen[target]; !ok {
			seen[target] = struct{}{}
			urls = append(urls, target)
		}
	}
	return urls
}

// HasURLReference reports whether a src value contains at least one url()
// reference.
func HasURLReference(src string) bool {
	return strings.Contains(src, "url(")
}

// IsLocalOnly reports whether a src value references only local(...) faces.
// Such declarations are preserved verbatim; there is nothing to fetch.
func IsLocalOnly(src string) bool {
	return strings.Contains(src, "local(") && !HasURLReference(src)
}

// IsDataURL reports whether s is already an inline data: URI.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// Resolve normalizes ref to absolute form against base, the declaring
// stylesheet's own URL. Absolute refs and data: URIs pass through
// unchanged, as does ref when base is empty or unparsable.
func Resolve(base, ref string) string {
	if IsDataURL(ref) || base == "" {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if refURL.IsAbs() {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
