// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	API      APIConfig      `toml:"api"`
	Explorer ExplorerConfig `toml:"explorer"`
	Blitz    BlitzConfig    `toml:"blitz"`
	Serve    ServeConfig    `toml:"serve"`
	Log      LogConfig      `toml:"log"`
	Messages MessagesConfig `toml:"messages"`
}

// APIConfig maps statistics API settings.
type APIConfig struct {
	BaseURL   *string `toml:"base-url"`
	TimeoutMs *int    `toml:"timeout-ms"`
}

// ExplorerConfig maps explorer defaults.
type ExplorerConfig struct {
	Rating *string `toml:"rating"`
	Color  *string `toml:"color"`
}

// BlitzConfig maps blitz defaults.
type BlitzConfig struct {
	Skill   *string `toml:"skill"`
	Color   *string `toml:"color"`
	Minutes *int    `toml:"minutes"`
}

// ServeConfig maps statistics server settings.
type ServeConfig struct {
	Addr        *string `toml:"addr"`
	DB          *string `toml:"db"`
	DBMin50     *string `toml:"db-min50"`
	CacheURL    *string `toml:"cache-url"`
	CacheTTLSec *int    `toml:"cache-ttl-sec"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	File   *string `toml:"file"`
	Format *string `toml:"format"`
}

// MessagesConfig maps message catalog overrides.
type MessagesConfig struct {
	Dir *string `toml:"dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Template is written by the config command when no file exists.
const Template = `# chessex configuration

[api]
# base-url = "http://localhost:5554"
# timeout-ms = 5000

[explorer]
# rating = "2"
# color = "white"

[blitz]
# skill = "2"
# color = "white"
# minutes = 3

[serve]
# addr = ":5554"
# db = "results.sqlite"
# db-min50 = "results_min50.sqlite"
# cache-url = "redis://localhost:6379/0"
# cache-ttl-sec = 300

[log]
# level = "info"
# file = ""
# format = "console"

[messages]
# dir = ""
`
