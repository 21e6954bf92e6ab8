package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.API.BaseURL != nil || cfg.Blitz.Minutes != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[api]
base-url = "http://stats:8000"
timeout-ms = 2500

[blitz]
skill = "3"
minutes = 5

[serve]
cache-ttl-sec = 60

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL == nil || *cfg.API.BaseURL != "http://stats:8000" {
		t.Fatalf("unexpected base url %v", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutMs == nil || *cfg.API.TimeoutMs != 2500 {
		t.Fatalf("unexpected timeout %v", cfg.API.TimeoutMs)
	}
	if cfg.Blitz.Skill == nil || *cfg.Blitz.Skill != "3" || cfg.Blitz.Minutes == nil || *cfg.Blitz.Minutes != 5 {
		t.Fatalf("unexpected blitz section %+v", cfg.Blitz)
	}
	if cfg.Blitz.Color != nil {
		t.Fatalf("unset key must stay nil")
	}
	if cfg.Serve.CacheTTLSec == nil || *cfg.Serve.CacheTTLSec != 60 {
		t.Fatalf("unexpected serve section %+v", cfg.Serve)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log section %+v", cfg.Log)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "failed to decode config") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestTemplateDecodes(t *testing.T) {
	var cfg FileConfig
	if _, err := toml.Decode(Template, &cfg); err != nil {
		t.Fatalf("template must be valid TOML: %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "chessex", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/data", "chessex", "chessex.log") {
		t.Fatalf("unexpected log path %s", got)
	}
}
