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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files. The env
// variable exposes the process environment to expressions:
//
//	remote = "ssh://${env.GERRIT_HOST}:29418"
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environment(),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		WorkingDir  *string  `hcl:"working_dir,optional"`
		Manifest    *string  `hcl:"manifest,optional"`
		Groups      []string `hcl:"groups,optional"`
		Remote      string   `hcl:"remote"`
		Prefix      *string  `hcl:"prefix,optional"`
		Patterns    []string `hcl:"patterns,optional"`
		PatternFile *string  `hcl:"pattern_file,optional"`
		Jobs        *int     `hcl:"jobs,optional"`
		Force       *bool    `hcl:"force,optional"`
		DryRun      *bool    `hcl:"dry_run,optional"`
		Branches    *bool    `hcl:"branches,optional"`
		Tags        *bool    `hcl:"tags,optional"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	// Convert to model
	cfg := &Config{
		WorkingDir:  str(hclCfg.WorkingDir),
		Manifest:    str(hclCfg.Manifest),
		Groups:      hclCfg.Groups,
		Remote:      hclCfg.Remote,
		Prefix:      str(hclCfg.Prefix),
		Patterns:    hclCfg.Patterns,
		PatternFile: str(hclCfg.PatternFile),
		Force:       hclCfg.Force != nil && *hclCfg.Force,
		DryRun:      hclCfg.DryRun != nil && *hclCfg.DryRun,
		Branches:    hclCfg.Branches,
		Tags:        hclCfg.Tags,
	}
	if hclCfg.Jobs != nil {
		cfg.Jobs = *hclCfg.Jobs
	}

	return cfg, nil
}

func environment() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	return cty.ObjectVal(vars)
}
