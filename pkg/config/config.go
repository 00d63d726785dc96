// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tb/pkg/errs"
)

// AppName names the config and data directories.
const AppName = "tb"

// Concurrency bounds accepted for the copier limit
const (
	DefaultConcurrency = 16
	MaxConcurrency     = 1024
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes on top of the defaults
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is the user configuration
type Config struct {
	// Storage overrides the template storage root. "~" expands to the home directory.
	Storage string `json:"storage,omitempty" yaml:"storage,omitempty"`
	// Concurrency bounds parallel filesystem work while copying
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	// Exclude patterns are added to every save
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	// PreserveLastDir is the default for save --preserve-last-dir
	PreserveLastDir bool `json:"preserve_last_dir,omitempty" yaml:"preserve_last_dir,omitempty"`
}

// 🏭 Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{Concurrency: DefaultConcurrency}
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// 🔍 LoadDefault loads the first config file found in the config directory,
// or returns the defaults when there is none
func LoadDefault(ctx context.Context) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	for _, name := range []string{"config.hcl", "config.yaml", "config.yml", "config.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return Load(ctx, path)
	}

	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file found, using defaults")

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Concurrency < 1 || cfg.Concurrency > MaxConcurrency {
		return &errs.ValidationError{
			Field:  "concurrency",
			Value:  fmt.Sprint(cfg.Concurrency),
			Reason: fmt.Sprintf("must be between 1 and %d", MaxConcurrency),
		}
	}

	for _, pattern := range cfg.Exclude {
		if pattern == "" || !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return &errs.ValidationError{Field: "exclude", Value: pattern, Reason: "malformed glob pattern"}
		}
	}

	if cfg.Storage != "" {
		storage, err := expandHome(cfg.Storage)
		if err != nil {
			return err
		}
		if !filepath.IsAbs(storage) {
			return &errs.ValidationError{Field: "storage", Value: cfg.Storage, Reason: "must be an absolute path"}
		}
		cfg.Storage = filepath.Clean(storage)
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	storage := cfg.Storage
	if storage == "" {
		storage = "<default>"
	}
	return fmt.Sprintf("storage=%s concurrency=%d exclude=[%s] preserve_last_dir=%t",
		storage, cfg.Concurrency, strings.Join(cfg.Exclude, ","), cfg.PreserveLastDir)
}

// 💾 StoragePath returns the template storage root: the configured override,
// $XDG_DATA_HOME/tb, or ~/.local/share/tb
func StoragePath(cfg *Config) (string, error) {
	if cfg != nil && cfg.Storage != "" {
		return cfg.Storage, nil
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" && filepath.IsAbs(dataHome) {
		return filepath.Join(dataHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// 📁 Dir returns the config directory: $XDG_CONFIG_HOME/tb or ~/.config/tb
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" && filepath.IsAbs(configHome) {
		return filepath.Join(configHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
