package document

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<link rel="stylesheet" href="css/site.css">
<link rel="icon" href="favicon.ico">
<style>body{margin:0}</style>
</head>
<body>
<style>@font-face{font-family:'X';src:url(f.woff2);}</style>
</body>
</html>`

func TestParse_CollectsStyleSources(t *testing.T) {
	d, err := ParseString(samplePage, "https://example.com/index.html")
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}

	sheets := d.Stylesheets()
	if len(sheets) != 3 {
		t.Fatalf("got %d stylesheets, want 3", len(sheets))
	}

	if sheets[0].Href != "https://example.com/css/site.css" {
		t.Errorf("link href = %q, want resolved absolute URL", sheets[0].Href)
	}
	if sheets[0].Inline() {
		t.Error("link sheet reported as inline")
	}
	if !sheets[1].Inline() || sheets[1].Text != "body{margin:0}" {
		t.Errorf("inline sheet = %+v, want body{margin:0}", sheets[1])
	}
	if !strings.Contains(sheets[2].Text, "@font-face") {
		t.Errorf("body style block not collected: %+v", sheets[2])
	}
}

func TestParse_BaseHrefOverridesDocumentURL(t *testing.T) {
	page := `<html><head>
<base href="https://cdn.example.com/assets/">
<link rel="stylesheet" href="site.css">
</head><body></body></html>`

	d, err := ParseString(page, "https://example.com/index.html")
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}

	if d.BaseURL() != "https://cdn.example.com/assets/" {
		t.Errorf("BaseURL() = %q, want base href", d.BaseURL())
	}
	if got := d.Stylesheets()[0].Href; got != "https://cdn.example.com/assets/site.css" {
		t.Errorf("link href = %q, want resolution against base href", got)
	}
}

func TestHasStylesheet(t *testing.T) {
	d, err := ParseString(samplePage, "https://example.com/index.html")
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}

	if !d.HasStylesheet("https://example.com/css/site.css") {
		t.Error("existing sheet not found")
	}
	if d.HasStylesheet("https://example.com/css/other.css") {
		t.Error("missing sheet reported as loaded")
	}

	d.AddStylesheet("https://example.com/css/other.css", "body{color:red}")
	if !d.HasStylesheet("https://example.com/css/other.css") {
		t.Error("added sheet not found")
	}
}

func TestRegisterFont(t *testing.T) {
	d, err := ParseString("<html></html>", "https://example.com/")
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}

	d.RegisterFont(FontRecord{
		Family: "Custom Sans",
		Style:  "normal",
		Weight: "400",
		Status: FontStatusLoaded,
		Source: "https://example.com/private/custom.woff2",
	})

	fonts := d.Fonts()
	if len(fonts) != 1 || fonts[0].Family != "Custom Sans" {
		t.Fatalf("Fonts() = %+v, want one Custom Sans record", fonts)
	}
}

func TestInjectStyle(t *testing.T) {
	d, err := ParseString("<html><head></head><body></body></html>", "https://example.com/")
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}

	d.InjectStyle("@font-face{font-family:'X';src:url(data:font/woff2;base64,AAAA);}", "data-fontsnap", "embed-css")

	out, err := d.HTML()
	if err != nil {
		t.Fatalf("HTML() failed: %v", err)
	}
	if !strings.Contains(out, `<style data-fontsnap="embed-css">`) {
		t.Errorf("marker attribute missing from output:\n%s", out)
	}
	if !strings.Contains(out, "base64,AAAA") {
		t.Errorf("injected CSS missing from output:\n%s", out)
	}
	// Injection goes into head, not body.
	head := out[:strings.Index(out, "<body>")]
	if !strings.Contains(head, "data-fontsnap") {
		t.Errorf("style not injected into head:\n%s", out)
	}
}
