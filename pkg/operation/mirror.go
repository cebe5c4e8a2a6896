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

package operation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/krep/pkg/log"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const (
	headsPrefix = "refs/heads/"
	tagsPrefix  = "refs/tags/"
)

// 🪞 NewMirrorOperation creates the repo-mirror operation
func NewMirrorOperation(opts Options) Operation {
	return &mirrorOperation{opts: opts}
}

// 🪞 mirrorOperation imports every planned project into the remote
type mirrorOperation struct {
	opts Options
}

// 🏃 Execute plans the projects and pushes them, at most Config.Jobs at a
// time and one at a time when Jobs is not positive. The first failure
// cancels the projects not yet started.
func (op *mirrorOperation) Execute(ctx context.Context) error {
	plan, err := MakePlan(ctx, op.opts)
	if err != nil {
		return errors.Errorf("planning mirror: %w", err)
	}

	reporter := op.opts.Reporter
	reporter.Header(fmt.Sprintf("mirroring %d projects to %s", len(plan.Projects), op.opts.Config.Remote))
	for _, res := range plan.Skipped {
		reporter.Project(ctx, res)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(max(op.opts.Config.Jobs, 1))

	for _, project := range plan.Projects {
		group.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			res := op.push(gctx, project)
			reporter.Project(gctx, res)
			if res.Err != nil {
				return errors.Errorf("mirroring %s: %w", project.Source, res.Err)
			}
			return nil
		})
	}

	err = group.Wait()
	reporter.Summary()
	return err
}

// push pushes the heads and tags of one project
func (op *mirrorOperation) push(ctx context.Context, project Project) log.ProjectResult {
	cfg := op.opts.Config
	logger := zerolog.Ctx(ctx).With().Str("project", project.Source).Logger()
	logger.Info().Str("remote", project.Remote).Msg("start processing")

	res := log.ProjectResult{
		Source: project.Source,
		Target: project.Target,
		Status: log.StatusPushed,
		DryRun: cfg.DryRun,
	}

	fail := func(err error) log.ProjectResult {
		res.Status = log.StatusFailed
		res.Err = err
		return res
	}

	if cfg.PushBranches() {
		n, err := op.pushRefs(ctx, project, headsPrefix, BranchCategories)
		if err != nil {
			logger.Error().Err(err).Msg("failed to push heads")
			return fail(err)
		}
		res.Heads = n
	}

	if cfg.PushTags() {
		n, err := op.pushRefs(ctx, project, tagsPrefix, TagCategories)
		if err != nil {
			logger.Error().Err(err).Msg("failed to push tags")
			return fail(err)
		}
		res.Tags = n
	}

	return res
}

// pushRefs pushes the refs under prefix that pass the patterns of
// categories, renamed by the same patterns. It returns the number of refs
// pushed.
func (op *mirrorOperation) pushRefs(ctx context.Context, project Project, prefix, categories string) (int, error) {
	refs, err := op.listRefs(ctx, project.GitDir, prefix)
	if err != nil {
		return 0, err
	}

	force := ""
	if op.opts.Config.Force {
		force = "+"
	}

	store := op.opts.Store
	var specs []string
	for _, ref := range refs {
		if !store.Match(categories, ref, "") {
			zerolog.Ctx(ctx).Debug().Str("ref", prefix+ref).Msg("ignored by the pattern")
			continue
		}
		renamed := store.Replace(categories, ref, ref)
		specs = append(specs, fmt.Sprintf("%s%s%s:%s%s", force, prefix, ref, prefix, renamed))
	}
	if len(specs) == 0 {
		return 0, nil
	}

	args := append([]string{"push", project.Remote}, specs...)
	if err := op.opts.Exec.Run(ctx, project.GitDir, "git", args...); err != nil {
		return 0, errors.Errorf("pushing %s: %w", strings.TrimSuffix(prefix, "/"), err)
	}
	return len(specs), nil
}

// listRefs returns the short names of the refs under prefix
func (op *mirrorOperation) listRefs(ctx context.Context, gitDir, prefix string) ([]string, error) {
	out, err := op.opts.Exec.Output(ctx, gitDir, "git", "for-each-ref", "--format=%(refname)", prefix)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", prefix, err)
	}

	var refs []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if name := strings.TrimPrefix(line, prefix); name != line && name != "" {
			refs = append(refs, name)
		}
	}
	return refs, nil
}
