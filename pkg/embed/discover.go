package embed

import (
	"context"
	"strings"

	cssast "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/fontsnap/fontsnap/pkg/csstext"
	"github.com/fontsnap/fontsnap/pkg/document"
)

// Face describes one font declaration discovered in a document.
type Face struct {
	Family string
	Style  string
	Weight string
	Src    string

	// Sheet is the owning stylesheet's href, empty for inline blocks
	// and dynamically registered fonts.
	Sheet string
}

// Kind classifies the face's source: "remote", "local", "data", or "none".
func (f Face) Kind() string {
	switch {
	case f.Src == "":
		return "none"
	case strings.Contains(f.Src, "data:"):
		return "data"
	case csstext.IsLocalOnly(f.Src):
		return "local"
	default:
		return "remote"
	}
}

// DiscoverFaces enumerates every @font-face declaration across the
// document's style sources without fetching any font binary. Linked and
// imported stylesheet texts are fetched as needed; unreachable or
// unparsable sheets are logged and skipped.
func (e *Engine) DiscoverFaces(ctx context.Context, doc *document.Document) []Face {
	e.acquireImports(ctx, doc)

	var faces []Face
	for _, sheet := range doc.Stylesheets() {
		text := sheet.Text
		if text == "" && !sheet.Inline() {
			var err error
			text, err = e.fetcher.Text(ctx, sheet.Href)
			if err != nil {
				e.logger.Warn("stylesheet fetch failed", "url", sheet.Href, "error", err)
				continue
			}
			sheet.SetText(text)
		}
		if text == "" {
			continue
		}

		parsed, err := parser.Parse(text)
		if err != nil {
			e.logger.Warn("stylesheet rules inaccessible", "url", sheet.Href, "error", err)
			continue
		}
		for _, rule := range parsed.Rules {
			if rule.Kind != cssast.AtRule || strings.ToLower(rule.Name) != "@font-face" {
				continue
			}
			face := Face{Sheet: sheet.Href}
			for _, decl := range rule.Declarations {
				switch strings.ToLower(decl.Property) {
				case "font-family":
					face.Family = strings.TrimSpace(decl.Value)
				case "src":
					face.Src = strings.TrimSpace(decl.Value)
				case "font-style":
					face.Style = strings.TrimSpace(decl.Value)
				case "font-weight":
					face.Weight = strings.TrimSpace(decl.Value)
				}
			}
			faces = append(faces, face)
		}
	}

	for _, font := range doc.Fonts() {
		if font.Status != document.FontStatusLoaded || font.Source == "" {
			continue
		}
		faces = append(faces, Face{
			Family: font.Family,
			Style:  font.Style,
			Weight: font.Weight,
			Src:    "url(" + font.Source + ")",
		})
	}
	return faces
}
