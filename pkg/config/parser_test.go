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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 TestParserRegistration tests the parser registration system
func TestParserRegistration(t *testing.T) {
	originalParsers := parsers
	defer func() {
		parsers = originalParsers
	}()

	parsers = nil

	mockParser := &struct {
		Parser
		canParse bool
	}{
		canParse: true,
	}

	Register(mockParser)
	assert.Len(t, parsers, 1, "should have 1 parser registered")
	assert.Equal(t, mockParser, parsers[0], "registered parser should match")
}

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: "config.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: ".krep.yml", want: &YAMLParser{}},
		{name: "hcl_file", filename: "config.hcl", want: &HCLParser{}},
		{name: "toml_file", filename: "config.toml", want: &TOMLParser{}},
		{name: "json_file", filename: "Config.JSON", want: &JSONParser{}},
		{name: "unknown_extension", filename: "config.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got, "should return nil for unknown extension")
				return
			}
			require.NotNil(t, got, "should return a parser")
			assert.IsType(t, tt.want, got, "should return correct parser type")
		})
	}
}

// 🧪 TestFormats checks every format decodes the same configuration
func TestFormats(t *testing.T) {
	tests := []struct {
		name   string
		parser Parser
		config string
	}{
		{
			name:   "yaml",
			parser: &YAMLParser{},
			config: `
remote: review.example.com
prefix: aosp/
patterns: ["project:^platform/"]
jobs: 3
branches: false
`,
		},
		{
			name:   "json",
			parser: &JSONParser{},
			config: `{"remote": "review.example.com", "prefix": "aosp/", "patterns": ["project:^platform/"], "jobs": 3, "branches": false}`,
		},
		{
			name:   "toml",
			parser: &TOMLParser{},
			config: `
remote = "review.example.com"
prefix = "aosp/"
patterns = ["project:^platform/"]
jobs = 3
branches = false
`,
		},
		{
			name:   "hcl",
			parser: &HCLParser{},
			config: `
remote   = "review.example.com"
prefix   = "aosp/"
patterns = ["project:^platform/"]
jobs     = 3
branches = false
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.parser.Parse(context.Background(), []byte(tt.config))
			require.NoError(t, err, "parsing should succeed")
			require.NoError(t, cfg.Validate())

			assert.Equal(t, "git://review.example.com", cfg.Remote)
			assert.Equal(t, "aosp/", cfg.Prefix)
			assert.Equal(t, []string{"project:^platform/"}, cfg.Patterns)
			assert.Equal(t, 3, cfg.Jobs)
			assert.False(t, cfg.PushBranches())
			assert.False(t, cfg.PushTags(), "tags stay off when branches is set alone")
		})
	}
}

// 🧪 TestHCLParsing tests HCL specific behavior
func TestHCLParsing(t *testing.T) {
	t.Setenv("KREP_TEST_HOST", "gerrit.example.com")

	tests := []struct {
		name        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:   "env_interpolation",
			config: `remote = "ssh://${env.KREP_TEST_HOST}:29418"`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "ssh://gerrit.example.com:29418", cfg.Remote)
			},
		},
		{
			name: "invalid_hcl_syntax",
			config: `
remote =
`,
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:        "missing_remote_attribute",
			config:      `prefix = "aosp"`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name: "invalid_block_type",
			config: `
remote = "x"
unknown_block {
  foo = "bar"
}`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
	}

	parser := &HCLParser{}
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parser.Parse(ctx, []byte(tt.config))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
