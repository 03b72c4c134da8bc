// Package config loads the CLI configuration file.
//
// The file is TOML:
//
//	[split]
//	pages_per_segment = 10
//	output_dir = "/tmp/out"
//	assume_yes = false
//
//	[log]
//	format = "text"
//	level = "info"
//
//	[publish]
//	bucket = "my-bucket"
//	prefix = "split"
//	overwrite = false
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPagesPerSegment matches the single-page split the tool defaults to.
const DefaultPagesPerSegment = 1

// Config is the CLI configuration.
type Config struct {
	Split   SplitConfig   `toml:"split"`
	Log     LogConfig     `toml:"log"`
	Publish PublishConfig `toml:"publish"`
}

// SplitConfig holds defaults for the split command.
type SplitConfig struct {
	PagesPerSegment int    `toml:"pages_per_segment"`
	OutputDir       string `toml:"output_dir"`
	AssumeYes       bool   `toml:"assume_yes"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// PublishConfig configures the optional upload of written segments.
type PublishConfig struct {
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	Overwrite bool   `toml:"overwrite"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Split: SplitConfig{PagesPerSegment: DefaultPagesPerSegment},
		Log:   LogConfig{Format: "text", Level: "info"},
	}
}

// DefaultPath returns ~/.pdfsplit/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pdfsplit", "config.toml"), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Split.PagesPerSegment <= 0 {
		return fmt.Errorf("split.pages_per_segment must be positive, got %d", c.Split.PagesPerSegment)
	}
	return nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
