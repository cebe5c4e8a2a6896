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

package pattern

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	RegisterFileParser(&HCLFileParser{})
}

// 🔧 HCLFileParser implements FileParser for HCL files
//
//	patterns {
//	  category = "project"
//	  pattern { value = "^platform/" }
//	  replace_pattern {
//	    value   = "^platform/"
//	    replace = "aosp/"
//	  }
//	}
type HCLFileParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLFileParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the groups from HCL
func (p *HCLFileParser) Parse(ctx context.Context, data []byte) ([]Group, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "patterns.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	type hclEntry struct {
		Category *string `hcl:"category,optional"`
		Name     *string `hcl:"name,optional"`
		Value    *string `hcl:"value,optional"`
		Replace  *string `hcl:"replace,optional"`
		Continue *bool   `hcl:"continue,optional"`
	}
	type hclGroup struct {
		Category       *string    `hcl:"category,optional"`
		Name           *string    `hcl:"name,optional"`
		Continue       *bool      `hcl:"continue,optional"`
		Pattern        []hclEntry `hcl:"pattern,block"`
		ExcludePattern []hclEntry `hcl:"exclude_pattern,block"`
		ReplacePattern []hclEntry `hcl:"replace_pattern,block"`
	}
	type hclDocument struct {
		Patterns        []hclGroup `hcl:"patterns,block"`
		ExcludePatterns []hclGroup `hcl:"exclude_patterns,block"`
		ReplacePatterns []hclGroup `hcl:"replace_patterns,block"`
	}

	var doc hclDocument
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &doc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	// Convert to groups
	var groups []Group
	add := func(kind GroupKind, in []hclGroup) {
		for _, hg := range in {
			g := Group{
				Kind:     kind,
				Category: deref(hg.Category),
				Name:     deref(hg.Name),
				Continue: hg.Continue,
			}
			for _, set := range []struct {
				kind    EntryKind
				entries []hclEntry
			}{
				{EntryPattern, hg.Pattern},
				{EntryExclude, hg.ExcludePattern},
				{EntryReplace, hg.ReplacePattern},
			} {
				for _, he := range set.entries {
					g.Entries = append(g.Entries, Entry{
						Kind:     set.kind,
						Category: deref(he.Category),
						Name:     deref(he.Name),
						Value:    deref(he.Value),
						Replace:  he.Replace,
						Continue: he.Continue,
					})
				}
			}
			groups = append(groups, g)
		}
	}
	add(GroupPatterns, doc.Patterns)
	add(GroupExclude, doc.ExcludePatterns)
	add(GroupReplace, doc.ReplacePatterns)

	return groups, nil
}
