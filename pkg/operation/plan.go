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
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/krep/pkg/log"
	"github.com/walteh/krep/pkg/manifest"
	"gitlab.com/tozd/go/errors"
)

const gitSuffix = ".git"

// 📋 Plan is the outcome of planning: projects to push and projects
// skipped with the reason
type Plan struct {
	Projects []Project
	Skipped  []log.ProjectResult
}

// 🗺️ MakePlan lists the source projects, from the manifest when one is
// configured and otherwise by scanning the working dir, and maps each to
// its target with the project patterns
func MakePlan(ctx context.Context, opts Options) (*Plan, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	cfg := opts.Config
	logger := zerolog.Ctx(ctx)

	sources, err := sources(ctx, opts)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	for _, src := range sources {
		gitDir := filepath.Join(cfg.WorkingDir, src.Name+gitSuffix)
		if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
			logger.Warn().Str("path", gitDir).Msg("mirror repository not existed, ignored")
			plan.Skipped = append(plan.Skipped, log.ProjectResult{
				Source: src.Name,
				Status: log.StatusMissing,
				Err:    errors.Errorf("%s not found", gitDir),
			})
			continue
		}

		if !opts.Store.Match(ProjectCategories, src.Name, "") {
			logger.Debug().Str("project", src.Name).Msg("ignored by the pattern")
			plan.Skipped = append(plan.Skipped, log.ProjectResult{
				Source: src.Name,
				Status: log.StatusFiltered,
			})
			continue
		}

		target := cfg.Prefix + opts.Store.Replace(ProjectCategories, src.Name, src.Name)
		plan.Projects = append(plan.Projects, Project{
			Source:   src.Name,
			Target:   target,
			GitDir:   gitDir,
			Remote:   cfg.Remote + "/" + target,
			Revision: src.Revision,
		})
	}

	return plan, nil
}

func sources(ctx context.Context, opts Options) ([]manifest.Project, error) {
	cfg := opts.Config
	if cfg.Manifest == "" {
		names, err := Scan(cfg.WorkingDir)
		if err != nil {
			return nil, err
		}
		out := make([]manifest.Project, 0, len(names))
		for _, n := range names {
			out = append(out, manifest.Project{Name: n, Path: n})
		}
		return out, nil
	}

	m, err := manifest.Load(ctx, cfg.Manifest)
	if err != nil {
		return nil, errors.Errorf("loading manifest: %w", err)
	}
	if len(cfg.Groups) == 0 {
		return m.Projects, nil
	}

	var out []manifest.Project
	for _, p := range m.Projects {
		for _, g := range cfg.Groups {
			if p.InGroup(g) {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

// 🔍 Scan returns the names of the bare repositories below dir, without
// the .git suffix, in sorted order. Repositories nested inside another
// repository are not reported.
func Scan(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*"+gitSuffix)
	if err != nil {
		return nil, errors.Errorf("scanning %s: %w", dir, err)
	}

	var names []string
	for _, m := range matches {
		if strings.Contains(path.Dir(m), gitSuffix+"/") || strings.HasSuffix(path.Dir(m), gitSuffix) {
			continue
		}
		name := strings.TrimSuffix(m, gitSuffix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(m)))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
