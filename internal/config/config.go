// Package config loads the optional conceptmap configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/conceptmap/config.toml
// (~/.config/conceptmap/config.toml when XDG_CONFIG_HOME is unset):
//
//	cache_dir = "/var/cache/conceptmap"
//	cache_ttl = "24h"
//	redis_url = "redis://localhost:6379/0"
//	listen = ":8080"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	database = "conceptmap"
//	collection = "nodes"
//
// Every field is optional. Command-line flags override file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// AppName names the configuration and cache directories.
const AppName = "conceptmap"

// Config holds settings shared by all commands.
type Config struct {
	CacheDir string   `toml:"cache_dir"`
	CacheTTL Duration `toml:"cache_ttl"`
	RedisURL string   `toml:"redis_url"`
	Listen   string   `toml:"listen"`
	Mongo    Mongo    `toml:"mongo"`
}

// Mongo selects the collection a map is served from.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Duration is a time.Duration written as a Go duration string ("36h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		CacheDir: defaultCacheDir(),
		CacheTTL: Duration{24 * time.Hour},
		Listen:   ":8080",
		Mongo: Mongo{
			Database:   AppName,
			Collection: "nodes",
		},
	}
}

// Load reads the file at path on top of [Default]. An empty path means the
// default location, which may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	if c.CacheTTL.Duration < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	if c.Mongo.URI != "" && (c.Mongo.Database == "" || c.Mongo.Collection == "") {
		return fmt.Errorf("mongo.database and mongo.collection are required with mongo.uri")
	}
	return nil
}

// DefaultPath returns the default config file location, or "" if no home
// directory can be determined.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName, "config.toml")
}

// defaultCacheDir follows the XDG cache convention (~/.cache/conceptmap).
func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, ".cache", AppName)
}
