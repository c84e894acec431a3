package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fontsnap/fontsnap/pkg/document"
	"github.com/fontsnap/fontsnap/pkg/embed"
)

// embedCommand creates the embed command.
func (c *CLI) embedCommand() *cobra.Command {
	var (
		output     string
		htmlOutput string
		baseURL    string
		noCache    bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "embed [url|file]",
		Short: "Resolve and inline a document's custom fonts",
		Long: `Embed discovers every custom font the document references across its
style sources, fetches each font binary once, and writes one
self-contained CSS payload with fonts inlined as data: URIs.

The argument is either a document URL or a local HTML file. For local
files, --base supplies the URL that relative font paths resolve against.

Examples:
  fontsnap embed https://example.com -o fonts.css
  fontsnap embed page.html --base https://example.com --html out.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.LoadConfig(configPath); err != nil {
				return err
			}
			return c.runEmbed(cmd.Context(), args[0], output, htmlOutput, baseURL, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the aggregated CSS to a file (default stdout)")
	cmd.Flags().StringVar(&htmlOutput, "html", "", "also write the document with the CSS injected as a marked style element")
	cmd.Flags().StringVar(&baseURL, "base", "", "base URL for relative resolution when embedding a local file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "keep the resource cache in memory for this run only")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")

	return cmd
}

func (c *CLI) runEmbed(ctx context.Context, target, output, htmlOutput, baseURL string, noCache bool) error {
	engine, fetcher, err := c.newEngine(noCache)
	if err != nil {
		return err
	}

	doc, err := c.loadDocument(ctx, fetcher, target, baseURL)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Embedding fonts...")
	spinner.Start()

	css, err := engine.EmbedCustomFonts(ctx, doc, embed.Options{PreCached: htmlOutput != ""})
	if err != nil {
		spinner.StopWithError("Embedding failed")
		return err
	}
	spinner.Stop()

	if css == "" {
		printInfo("No custom fonts found")
		return nil
	}
	prog.done(fmt.Sprintf("Embedded %d font face(s)", strings.Count(css, "@font-face")))

	if output == "" {
		fmt.Println(css)
	} else {
		if err := os.WriteFile(output, []byte(css), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printSuccess("Wrote aggregated CSS (%d bytes)", len(css))
		printFile(output)
	}

	if htmlOutput != "" {
		out, err := doc.HTML()
		if err != nil {
			return fmt.Errorf("serialize document: %w", err)
		}
		if err := os.WriteFile(htmlOutput, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", htmlOutput, err)
		}
		printFile(htmlOutput)
	}
	return nil
}

// loadDocument parses the embed target: a URL is fetched, anything else
// is read as a local HTML file with --base as the document URL.
func (c *CLI) loadDocument(ctx context.Context, fetcher interface {
	Text(ctx context.Context, url string) (string, error)
}, target, baseURL string) (*document.Document, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		htmlText, err := fetcher.Text(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("fetch document %s: %w", target, err)
		}
		return document.ParseString(htmlText, target)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return document.ParseString(string(data), baseURL)
}
