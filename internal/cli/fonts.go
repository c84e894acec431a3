package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fontsnap/fontsnap/pkg/embed"
)

// fontsCommand creates the fonts listing command.
func (c *CLI) fontsCommand() *cobra.Command {
	var (
		baseURL     string
		interactive bool
		noCache     bool
		configPath  string
	)

	cmd := &cobra.Command{
		Use:   "fonts [url|file]",
		Short: "List the font faces a document declares",
		Long: `Fonts enumerates every @font-face declaration across the document's
style sources (inline blocks, stylesheet links, @imports, and the dynamic
font registry) without fetching any font binary.

With --interactive, an arrow-key picker shows the faces and prints the
selected face's source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.LoadConfig(configPath); err != nil {
				return err
			}
			return c.runFonts(cmd.Context(), args[0], baseURL, interactive, noCache)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base", "", "base URL for relative resolution when reading a local file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "select a face interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "keep the resource cache in memory for this run only")
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")

	return cmd
}

func (c *CLI) runFonts(ctx context.Context, target, baseURL string, interactive, noCache bool) error {
	engine, fetcher, err := c.newEngine(noCache)
	if err != nil {
		return err
	}

	doc, err := c.loadDocument(ctx, fetcher, target, baseURL)
	if err != nil {
		return err
	}

	faces := engine.DiscoverFaces(ctx, doc)
	if len(faces) == 0 {
		printInfo("No font faces found")
		return nil
	}

	if interactive {
		model := NewFaceListModel(faces)
		final, err := tea.NewProgram(model).Run()
		if err != nil {
			return fmt.Errorf("run picker: %w", err)
		}
		if m, ok := final.(FaceListModel); ok && m.Selected != nil {
			printSuccess("%s", m.Selected.Family)
			printDetail("src: %s", m.Selected.Src)
		}
		return nil
	}

	printFaces(faces)
	return nil
}

// printFaces renders the discovered faces as a table.
func printFaces(faces []embed.Face) {
	rows := make([][]string, len(faces))
	for i, f := range faces {
		style := f.Style
		if style == "" {
			style = "normal"
		}
		weight := f.Weight
		if weight == "" {
			weight = "normal"
		}
		rows[i] = []string{f.Family, style, weight, f.Kind()}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Family", "Style", "Weight", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	fmt.Println(t.Render())
	printDetail("%d face(s)", len(faces))
}
