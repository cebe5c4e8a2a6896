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

package opts

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/krep/pkg/command"
	"github.com/walteh/krep/pkg/config"
	"github.com/walteh/krep/pkg/log"
	"github.com/walteh/krep/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// Flags
	ConfigFile  string
	Debug       bool
	Patterns    []string
	PatternFile string

	// Set by Init
	Config   *config.Config
	Store    *pattern.Store
	Reporter *log.Reporter

	// Exec overrides the command runner used by repo-mirror
	Exec command.Executor
}

// 🏗️ Init loads the config file and builds the pattern store. A missing
// config is not an error: commands that need one validate it themselves.
func (o *RootOpts) Init(ctx context.Context, console io.Writer) error {
	logger := zerolog.Ctx(ctx)

	path := o.ConfigFile
	if path == "" {
		path = config.Discover(".")
	}

	cfg := &config.Config{}
	if path != "" {
		c, err := config.Read(ctx, path)
		if err != nil {
			return errors.Errorf("reading config: %w", err)
		}
		cfg = c
		logger.Debug().Str("path", path).Msg("config loaded")
	}
	o.Config = cfg

	store := pattern.NewStore(pattern.WithLogger(*logger))
	if cfg.PatternFile != "" {
		store.Load(ctx, cfg.PatternFile)
	}
	store.Add(cfg.Patterns...)
	if o.PatternFile != "" {
		store.Load(ctx, o.PatternFile)
	}
	store.Add(o.Patterns...)
	o.Store = store

	o.Reporter = log.New(console, *logger)
	return nil
}

// Executor returns the command runner for cfg
func (o *RootOpts) Executor(cfg *config.Config) command.Executor {
	if o.Exec != nil {
		return o.Exec
	}
	return &command.Runner{DryRun: cfg.DryRun}
}
