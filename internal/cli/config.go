package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config carries CLI and serve-mode settings, loadable from a TOML file
// at ~/.config/fontsnap/config.toml (or --config).
type Config struct {
	// CacheDir overrides the XDG cache directory.
	CacheDir string `toml:"cache_dir"`

	// UserAgent is sent with every resource fetch.
	UserAgent string `toml:"user_agent"`

	// IconFonts lists extra icon-font markers excluded from embedding,
	// on top of the built-in set.
	IconFonts []string `toml:"icon_fonts"`

	Server ServerConfig `toml:"server"`
}

// ServerConfig configures serve mode.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig selects a Redis backend for the shared stores when Addr is set.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig selects a Mongo backend for the shared stores when URI is set.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
	}
}

// defaultConfigPath returns the config file location using XDG standard.
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the TOML config at path, or the default location when
// path is empty. A missing file yields the defaults; an explicit path
// that does not exist is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
