// Package document models the style sources of a parsed HTML document.
//
// The embedding engine discovers fonts across four structurally different
// sources: inline <style> blocks, external <link rel="stylesheet">
// documents, stylesheets acquired through @import, and dynamically
// registered fonts with an out-of-band source URL. This package parses a
// document once and exposes those sources uniformly as [Stylesheet] and
// [FontRecord] values, and can attach the aggregated CSS back onto the
// document as a marked <style> element.
package document

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/fontsnap/fontsnap/pkg/csstext"
)

// FontStatusLoaded is the load state a dynamic font must report before
// its source participates in embedding.
const FontStatusLoaded = "loaded"

// Stylesheet is one loaded style source.
// Inline <style> blocks have no Href and carry their text immediately.
// Link and @import sheets have an absolute Href; their text is
// materialized by whoever fetches them (see SetText).
type Stylesheet struct {
	Href string
	Text string
}

// Inline reports whether the sheet came from an inline <style> block.
func (s *Stylesheet) Inline() bool { return s.Href == "" }

// SetText records the fetched body of a link or import sheet.
func (s *Stylesheet) SetText(text string) { s.Text = text }

// FontRecord is a dynamically registered font: one the document's runtime
// loaded programmatically, whose source URL was recorded out-of-band
// rather than declared in CSS.
type FontRecord struct {
	Family string
	Style  string
	Weight string
	Status string
	Source string
}

// Document is a parsed HTML document plus its discovered style sources.
type Document struct {
	url    string
	base   string
	root   *html.Node
	sheets []*Stylesheet
	fonts  []FontRecord
}

// Parse reads an HTML document and collects its inline style blocks and
// stylesheet links. docURL is the document's own URL, used as the base
// for relative resolution; a <base href> element overrides it.
func Parse(r io.Reader, docURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	d := &Document{url: docURL, base: docURL, root: root}
	d.collect(root)
	return d, nil
}

// ParseString is a convenience wrapper around [Parse].
func ParseString(htmlText, docURL string) (*Document, error) {
	return Parse(strings.NewReader(htmlText), docURL)
}

// collect walks the tree gathering <base>, <style> and <link rel=stylesheet>.
func (d *Document) collect(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Base:
			if href := attr(n, "href"); href != "" {
				d.base = csstext.Resolve(d.url, href)
			}
		case atom.Style:
			d.sheets = append(d.sheets, &Stylesheet{Text: textContent(n)})
		case atom.Link:
			rel := strings.ToLower(attr(n, "rel"))
			href := attr(n, "href")
			if strings.Contains(rel, "stylesheet") && href != "" {
				d.sheets = append(d.sheets, &Stylesheet{Href: csstext.Resolve(d.base, href)})
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.collect(c)
	}
}

// URL returns the document's own URL.
func (d *Document) URL() string { return d.url }

// BaseURL returns the base for relative resolution: the <base href> when
// present, otherwise the document URL.
func (d *Document) BaseURL() string { return d.base }

// Stylesheets returns the loaded style sources in document order,
// followed by any sheets registered afterwards (e.g. acquired @imports).
func (d *Document) Stylesheets() []*Stylesheet { return d.sheets }

// HasStylesheet reports whether a sheet with exactly this href is already
// loaded. Used by @import acquisition to avoid duplicate loads.
func (d *Document) HasStylesheet(href string) bool {
	for _, s := range d.sheets {
		if s.Href == href {
			return true
		}
	}
	return false
}

// AddStylesheet registers an acquired stylesheet as loaded, the analogue
// of injecting a link element and awaiting its settlement.
func (d *Document) AddStylesheet(href, text string) *Stylesheet {
	s := &Stylesheet{Href: href, Text: text}
	d.sheets = append(d.sheets, s)
	return s
}

// Fonts returns the dynamic font registry.
func (d *Document) Fonts() []FontRecord { return d.fonts }

// RegisterFont records a dynamically loaded font. The caller supplies the
// private source URL it observed out-of-band.
func (d *Document) RegisterFont(f FontRecord) {
	d.fonts = append(d.fonts, f)
}

// InjectStyle attaches a <style> element carrying css to the document
// head, tagged with the given marker attribute so downstream consumers
// can locate or exclude it. The element is created even when a head is
// missing (appended to the document root in that case).
func (d *Document) InjectStyle(css, markerKey, markerVal string) {
	style := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: markerKey, Val: markerVal}},
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: css})

	parent := findElement(d.root, atom.Head)
	if parent == nil {
		parent = findElement(d.root, atom.Html)
	}
	if parent == nil {
		parent = d.root
	}
	parent.AppendChild(style)
}

// Render serializes the document back to HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// HTML returns the serialized document as a string.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
