package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
cache_dir = "/var/cache/fontsnap"
user_agent = "fontsnap-test/1.0"
icon_fonts = ["corp-icons"]

[server]
addr = ":9090"

[server.redis]
addr = "localhost:6379"
db = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.CacheDir != "/var/cache/fontsnap" {
		t.Errorf("cache_dir = %q", cfg.CacheDir)
	}
	if cfg.UserAgent != "fontsnap-test/1.0" {
		t.Errorf("user_agent = %q", cfg.UserAgent)
	}
	if len(cfg.IconFonts) != 1 || cfg.IconFonts[0] != "corp-icons" {
		t.Errorf("icon_fonts = %v", cfg.IconFonts)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.Redis.Addr != "localhost:6379" || cfg.Server.Redis.DB != 2 {
		t.Errorf("server.redis = %+v", cfg.Server.Redis)
	}
}

func TestLoadConfig_ExplicitMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("explicit missing config must error")
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("cache_dir = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("malformed config must error")
	}
}
