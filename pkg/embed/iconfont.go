package embed

import "strings"

// IconFontMatcher reports whether an identifier (a font family, a URL, or
// a CSS fragment) belongs to an icon/glyph font. Matched fonts are never
// inlined; icon glyphs are rendered separately and embedding their full
// binaries would bloat the payload for no benefit.
type IconFontMatcher func(identifier string) bool

// iconFontMarkers are substrings that identify the common icon font
// families across their hosted URLs and family names.
var iconFontMarkers = []string{
	"fontawesome",
	"font-awesome",
	"font awesome",
	"icomoon",
	"glyphicon",
	"material-icons",
	"material icons",
	"materialicons",
	"bootstrap-icons",
	"ionicons",
	"octicons",
	"dashicons",
}

// DefaultIconFontMatcher matches the well-known icon font families by
// case-insensitive substring.
func DefaultIconFontMatcher(identifier string) bool {
	lower := strings.ToLower(identifier)
	for _, marker := range iconFontMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// MarkerIconFontMatcher builds a matcher over a custom marker list,
// using the same case-insensitive substring semantics as the default.
func MarkerIconFontMatcher(markers []string) IconFontMatcher {
	lowered := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			lowered = append(lowered, m)
		}
	}
	return func(identifier string) bool {
		lower := strings.ToLower(identifier)
		for _, marker := range lowered {
			if strings.Contains(lower, marker) {
				return true
			}
		}
		return false
	}
}
