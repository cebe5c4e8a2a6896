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

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
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

// 📚 Config is the configuration of a mirror run
type Config struct {
	WorkingDir  string   `json:"working_dir,omitempty" yaml:"working_dir,omitempty" toml:"working_dir,omitempty"`   // Directory holding the bare mirror repositories
	Manifest    string   `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty"`            // Optional manifest listing the projects
	Groups      []string `json:"groups,omitempty" yaml:"groups,omitempty" toml:"groups,omitempty"`                  // Manifest groups to import, empty for all
	Remote      string   `json:"remote" yaml:"remote" toml:"remote"`                                                // Base URL of the target server
	Prefix      string   `json:"prefix,omitempty" yaml:"prefix,omitempty" toml:"prefix,omitempty"`                  // Prefix of every target project
	Patterns    []string `json:"patterns,omitempty" yaml:"patterns,omitempty" toml:"patterns,omitempty"`            // Inline pattern strings
	PatternFile string   `json:"pattern_file,omitempty" yaml:"pattern_file,omitempty" toml:"pattern_file,omitempty"` // Pattern definition file
	Jobs        int      `json:"jobs,omitempty" yaml:"jobs,omitempty" toml:"jobs,omitempty"`                        // Projects pushed concurrently
	Force       bool     `json:"force,omitempty" yaml:"force,omitempty" toml:"force,omitempty"`                     // Force push
	DryRun      bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty" toml:"dry_run,omitempty"`               // Log pushes without running them
	Branches    *bool    `json:"branches,omitempty" yaml:"branches,omitempty" toml:"branches,omitempty"`            // Push heads
	Tags        *bool    `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`                        // Push tags
}

// 🎯 Load reads, parses and validates the configuration file
func Load(ctx context.Context, path string) (*Config, error) {
	cfg, err := Read(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation, for callers that layer flags on top.
// Manifest and pattern file paths are resolved against the config file.
func Read(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	dir := filepath.Dir(path)
	cfg.Manifest = relativeTo(dir, cfg.Manifest)
	cfg.PatternFile = relativeTo(dir, cfg.PatternFile)

	return cfg, nil
}

// relativeTo resolves a file named in the config against the config's
// directory
func relativeTo(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// 🔍 Validate checks the configuration and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Remote == "" {
		return errors.Errorf("remote is required")
	}
	if cfg.Jobs < 0 {
		return errors.Errorf("jobs must be positive, got %d", cfg.Jobs)
	}

	if !strings.Contains(cfg.Remote, "://") {
		cfg.Remote = "git://" + cfg.Remote
	}
	cfg.Remote = strings.TrimRight(cfg.Remote, "/")

	if cfg.Prefix != "" && !strings.HasSuffix(cfg.Prefix, "/") {
		cfg.Prefix += "/"
	}

	if cfg.WorkingDir == "" {
		cfg.WorkingDir = "."
	}
	cfg.WorkingDir = filepath.Clean(cfg.WorkingDir)

	if cfg.Jobs == 0 {
		cfg.Jobs = 1
	}

	if cfg.Branches == nil && cfg.Tags == nil {
		yes := true
		cfg.Branches, cfg.Tags = &yes, &yes
	}

	return nil
}

// PushBranches reports whether heads are pushed
func (cfg *Config) PushBranches() bool {
	return cfg.Branches != nil && *cfg.Branches
}

// PushTags reports whether tags are pushed
func (cfg *Config) PushTags() bool {
	return cfg.Tags != nil && *cfg.Tags
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s/%s", cfg.WorkingDir, cfg.Remote, cfg.Prefix)
}

// configNames are tried in order by Discover
var configNames = []string{"config.yaml", "config.yml", "config.hcl", "config.toml", "config.json"}

// 🔍 Discover returns the first existing default config file: .krep.* in
// dir, then krep/config.* in the XDG config directories. It returns "" when
// none exists.
func Discover(dir string) string {
	for _, name := range configNames {
		path := filepath.Join(dir, ".krep"+filepath.Ext(name))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, name := range configNames {
		if path, err := xdg.SearchConfigFile(filepath.Join("krep", name)); err == nil {
			return path
		}
	}
	return ""
}
