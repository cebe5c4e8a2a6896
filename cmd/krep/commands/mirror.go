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

package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/krep/cmd/krep/opts"
	"github.com/walteh/krep/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewMirrorCmd creates the repo-mirror command
func NewMirrorCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		manifest   string
		remote     string
		prefix     string
		workingDir string
		groups     []string
		jobs       int
		force      bool
		dryRun     bool
		branches   bool
		tags       bool
	)

	cmd := &cobra.Command{
		Use:   "repo-mirror",
		Short: "Import a git-repo mirror into a remote server",
		Long: `repo-mirror pushes the bare repositories of a git-repo mirror to a
remote server. It will:
1. List the projects from the manifest, or scan the working dir for *.git
2. Skip projects missing on disk or rejected by the project patterns
3. Rename each project with the project patterns and the prefix
4. Push the heads and tags that pass the branch and tag patterns

Flags override the values of the config file.`,
		Example: `  krep repo-mirror --remote review.example.com --prefix aosp \
    -p 'project:^platform/' -p 'branch:~^main$~master~' -j 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg := *opts.Config
			flags := cmd.Flags()
			if flags.Changed("manifest") {
				cfg.Manifest = manifest
			}
			if flags.Changed("remote") {
				cfg.Remote = remote
			}
			if flags.Changed("prefix") {
				cfg.Prefix = prefix
			}
			if flags.Changed("working-dir") {
				cfg.WorkingDir = workingDir
			}
			if flags.Changed("groups") {
				cfg.Groups = groups
			}
			if flags.Changed("jobs") {
				cfg.Jobs = jobs
			}
			if flags.Changed("force") {
				cfg.Force = force
			}
			if flags.Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if flags.Changed("branches") {
				cfg.Branches = &branches
			}
			if flags.Changed("tags") {
				cfg.Tags = &tags
			}

			if err := cfg.Validate(); err != nil {
				return errors.Errorf("validating config: %w", err)
			}
			zerolog.Ctx(ctx).Debug().Stringer("config", &cfg).Msg("mirroring")

			op := operation.NewMirrorOperation(operation.Options{
				Config:   &cfg,
				Store:    opts.Store,
				Exec:     opts.Executor(&cfg),
				Reporter: opts.Reporter,
			})

			runner := operation.NewRunner(zerolog.Ctx(ctx), true)
			if err := runner.Run(ctx, op); err != nil {
				return errors.Errorf("running repo-mirror: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&manifest, "manifest", "", "manifest xml listing the projects (default: scan the working dir)")
	cmd.Flags().StringVar(&remote, "remote", "", "remote server url, git:// is assumed without a scheme")
	cmd.Flags().StringVar(&prefix, "prefix", "", "prefix prepended to every target project")
	cmd.Flags().StringVar(&workingDir, "working-dir", "", "mirror directory holding the bare repositories")
	cmd.Flags().StringSliceVar(&groups, "groups", nil, "manifest groups to mirror")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "projects pushed in parallel")
	cmd.Flags().BoolVar(&force, "force", false, "force push the refs")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the git push commands without running them")
	cmd.Flags().BoolVar(&branches, "branches", false, "push the heads")
	cmd.Flags().BoolVar(&tags, "tags", false, "push the tags")

	return cmd
}
