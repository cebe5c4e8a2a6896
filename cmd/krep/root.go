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

package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/krep/cmd/krep/commands"
	"github.com/walteh/krep/cmd/krep/opts"
)

// newRootCmd creates the root command with every subcommand attached
func newRootCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "krep",
		Short: "Filter and rename repositories, branches and tags with category patterns",
		Long: `krep keeps a store of category patterns (project, branch, tag, ...)
and uses it to decide which names are wanted and how they are renamed.

Patterns come from the config file, a rule definition file and the
--pattern flag, in that order.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd, ro.Debug)
			return ro.Init(ctx, cmd.OutOrStdout())
		},
	}

	addRootFlags(cmd, ro)

	cmd.AddCommand(
		commands.NewMirrorCmd(ro),
		commands.NewPatternCmd(ro),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, ro *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&ro.ConfigFile, "config", "c", "", "config file path (default: discovered)")
	cmd.PersistentFlags().BoolVarP(&ro.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringArrayVarP(&ro.Patterns, "pattern", "p", nil, "inline pattern, e.g. project:^platform/ (repeatable)")
	cmd.PersistentFlags().StringVar(&ro.PatternFile, "pattern-file", "", "rule definition file (xml, yaml, json, toml or hcl)")
}

// setupLogging sets the level of the context logger from the debug flag
func setupLogging(cmd *cobra.Command, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.Ctx(cmd.Context()).Level(level)
	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)
	return ctx
}
