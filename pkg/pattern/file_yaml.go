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
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	RegisterFileParser(&YAMLFileParser{})
	RegisterFileParser(&JSONFileParser{})
	RegisterFileParser(&TOMLFileParser{})
}

// fileDocument is the shared schema of the YAML, JSON and TOML formats
type fileDocument struct {
	Patterns        []fileGroup `yaml:"patterns" json:"patterns" toml:"patterns"`
	ExcludePatterns []fileGroup `yaml:"exclude_patterns" json:"exclude_patterns" toml:"exclude_patterns"`
	ReplacePatterns []fileGroup `yaml:"replace_patterns" json:"replace_patterns" toml:"replace_patterns"`
}

type fileGroup struct {
	Category       string      `yaml:"category" json:"category" toml:"category"`
	Name           string      `yaml:"name" json:"name" toml:"name"`
	Continue       *bool       `yaml:"continue" json:"continue" toml:"continue"`
	Pattern        []fileEntry `yaml:"pattern" json:"pattern" toml:"pattern"`
	ExcludePattern []fileEntry `yaml:"exclude_pattern" json:"exclude_pattern" toml:"exclude_pattern"`
	ReplacePattern []fileEntry `yaml:"replace_pattern" json:"replace_pattern" toml:"replace_pattern"`
}

type fileEntry struct {
	Category string  `yaml:"category" json:"category" toml:"category"`
	Name     string  `yaml:"name" json:"name" toml:"name"`
	Value    string  `yaml:"value" json:"value" toml:"value"`
	Replace  *string `yaml:"replace" json:"replace" toml:"replace"`
	Continue *bool   `yaml:"continue" json:"continue" toml:"continue"`
}

// UnmarshalYAML accepts a bare string as the entry value
func (e *fileEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Value = node.Value
		return nil
	}
	type plain fileEntry
	return node.Decode((*plain)(e))
}

// UnmarshalJSON accepts a bare string as the entry value
func (e *fileEntry) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &e.Value)
	}
	type plain fileEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode((*plain)(e))
}

func (d *fileDocument) groups() []Group {
	var out []Group
	add := func(kind GroupKind, groups []fileGroup) {
		for _, fg := range groups {
			g := Group{
				Kind:     kind,
				Category: fg.Category,
				Name:     fg.Name,
				Continue: fg.Continue,
			}
			for _, set := range []struct {
				kind    EntryKind
				entries []fileEntry
			}{
				{EntryPattern, fg.Pattern},
				{EntryExclude, fg.ExcludePattern},
				{EntryReplace, fg.ReplacePattern},
			} {
				for _, fe := range set.entries {
					g.Entries = append(g.Entries, Entry{
						Kind:     set.kind,
						Category: fe.Category,
						Name:     fe.Name,
						Value:    fe.Value,
						Replace:  fe.Replace,
						Continue: fe.Continue,
					})
				}
			}
			out = append(out, g)
		}
	}
	add(GroupPatterns, d.Patterns)
	add(GroupExclude, d.ExcludePatterns)
	add(GroupReplace, d.ReplacePatterns)
	return out
}

// 🔧 YAMLFileParser implements FileParser for YAML files
type YAMLFileParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLFileParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the groups from YAML
func (p *YAMLFileParser) Parse(ctx context.Context, data []byte) ([]Group, error) {
	var doc fileDocument
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return doc.groups(), nil
}

// 🔧 JSONFileParser implements FileParser for JSON files
type JSONFileParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *JSONFileParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

// 📝 Parse parses the groups from JSON
func (p *JSONFileParser) Parse(ctx context.Context, data []byte) ([]Group, error) {
	var doc fileDocument
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Errorf("parsing JSON: %w", err)
	}
	return doc.groups(), nil
}

// 🔧 TOMLFileParser implements FileParser for TOML files. Entries are
// tables, bare strings are not accepted.
type TOMLFileParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *TOMLFileParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".toml")
}

// 📝 Parse parses the groups from TOML
func (p *TOMLFileParser) Parse(ctx context.Context, data []byte) ([]Group, error) {
	var doc fileDocument
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Errorf("parsing TOML: %w", err)
	}
	return doc.groups(), nil
}
