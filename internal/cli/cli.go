// Package cli implements the fontsnap command-line interface.
//
// This package provides commands for embedding a document's custom fonts
// as a self-contained CSS payload, inspecting the fonts a document
// declares, running the embedding engine as an HTTP service, and managing
// the resource cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
//   - embed: Resolve and inline a document's custom fonts
//   - fonts: List the font faces a document declares
//   - serve: Run the embedding engine as an HTTP service
//   - cache: Manage the resource cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fontsnap/fontsnap/pkg/buildinfo"
	"github.com/fontsnap/fontsnap/pkg/cache"
	"github.com/fontsnap/fontsnap/pkg/embed"
	"github.com/fontsnap/fontsnap/pkg/fetch"
)

// appName is the application name used for directories and display.
const appName = "fontsnap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level. Debug level also routes
// engine, cache, and fetch events to the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level == LogDebug {
		registerDebugHooks(c.Logger)
	}
}

// LoadConfig merges the TOML config at path (or the default location when
// path is empty) into the CLI's config. A missing default file is not an
// error.
func (c *CLI) LoadConfig(path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "fontsnap",
		Short:        "Fontsnap inlines a document's custom web fonts",
		Long:         `Fontsnap discovers every custom font a document references across its style sources, resolves each font binary once, and produces one self-contained CSS payload with fonts embedded as data: URIs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.embedCommand())
	root.AddCommand(c.fontsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newEngine assembles an embedding engine backed by the CLI's cache
// directory. With noCache the stores are in-memory for the run only.
func (c *CLI) newEngine(noCache bool) (*embed.Engine, *fetch.Client, error) {
	resources, attempts, err := c.newStores(noCache)
	if err != nil {
		return nil, nil, err
	}

	var fetchOpts []fetch.Option
	if c.Config.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetch.WithUserAgent(c.Config.UserAgent))
	}
	fetcher := fetch.NewClient(fetchOpts...)

	engine := embed.New(resources, attempts, fetcher,
		embed.WithLogger(c.Logger),
		embed.WithIconFontMatcher(c.iconFontMatcher()),
	)
	return engine, fetcher, nil
}

func (c *CLI) newStores(noCache bool) (cache.Cache, cache.SeenSet, error) {
	if noCache {
		return cache.NewMemoryCache(), cache.NewMemorySet(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewMemoryCache(), cache.NewMemorySet(), nil
	}
	resources, err := cache.NewFileCache(filepath.Join(dir, "resources"))
	if err != nil {
		return nil, nil, err
	}
	attempts, err := cache.NewFileSet(filepath.Join(dir, "attempts"))
	if err != nil {
		return nil, nil, err
	}
	return resources, attempts, nil
}

// iconFontMatcher extends the built-in icon font exclusion with
// config-supplied markers.
func (c *CLI) iconFontMatcher() embed.IconFontMatcher {
	extra := c.Config.IconFonts
	if len(extra) == 0 {
		return embed.DefaultIconFontMatcher
	}
	custom := embed.MarkerIconFontMatcher(extra)
	return func(identifier string) bool {
		return embed.DefaultIconFontMatcher(identifier) || custom(identifier)
	}
}

// cacheDir returns the cache directory, preferring the configured path,
// then XDG standard (~/.cache/fontsnap/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.CacheDir != "" {
		return c.Config.CacheDir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
