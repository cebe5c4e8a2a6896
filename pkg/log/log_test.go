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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestReporter(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, r *Reporter)
		wantLogs []string
	}{
		{
			name: "log_messages",
			op: func(t *testing.T, r *Reporter) {
				r.Info("info message")
				r.Warning("warning message")
				r.Error("error message")
				r.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, r *Reporter) {
				r.Infof("info %s", "test")
				r.Warningf("warning %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, r *Reporter) {
				r.Header("mirroring 3 projects")
			},
			wantLogs: []string{
				"krep • mirroring 3 projects",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, r *Reporter) {
				r.Info("first")
				r.LogNewline()
				r.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
		{
			name: "summary_success",
			op: func(t *testing.T, r *Reporter) {
				ctx := context.Background()
				r.Project(ctx, ProjectResult{Source: "a", Status: StatusPushed})
				r.Project(ctx, ProjectResult{Source: "b", Status: StatusFiltered})
				r.Summary()
			},
			wantLogs: []string{
				"✓ a                                        pushed     0 heads, 0 tags",
				"- b                                        filtered",
				"✅ 1 pushed, 1 filtered, 0 missing, 0 failed",
			},
		},
		{
			name: "summary_failure",
			op: func(t *testing.T, r *Reporter) {
				r.Project(context.Background(), ProjectResult{Source: "a", Status: StatusFailed, Err: errors.New("boom")})
				r.Summary()
			},
			wantLogs: []string{
				"✗ a                                        failed     boom",
				"❌ 0 pushed, 0 filtered, 0 missing, 1 failed",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			r := New(buf, zerolog.New(zerolog.TestWriter{T: t}))

			tt.op(t, r)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestReporterContext(t *testing.T) {
	r := New(io.Discard, zerolog.Nop())

	ctx := NewContext(context.Background(), r)
	assert.Same(t, r, FromContext(ctx), "reporter from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when reporter is missing")
}

func TestProjectFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		res  ProjectResult
		want string
	}{
		{
			name: "pushed_renamed",
			res:  ProjectResult{Source: "platform/build", Target: "aosp/platform/build", Status: StatusPushed, Heads: 2, Tags: 5},
			want: "    ✓ platform/build → aosp/platform/build     pushed     2 heads, 5 tags",
		},
		{
			name: "dry_run",
			res:  ProjectResult{Source: "platform/art", Target: "platform/art", Status: StatusPushed, Heads: 1, DryRun: true},
			want: "    ✓ platform/art                             dry-run    1 heads, 0 tags",
		},
		{
			name: "missing",
			res:  ProjectResult{Source: "device/blob", Status: StatusMissing, Err: errors.New("device/blob.git not found")},
			want: "    ? device/blob                              missing    device/blob.git not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(io.Discard, zerolog.Nop())
			assert.Equal(t, tt.want, r.formatProject(tt.res), "formatted output should match")
		})
	}
}

func TestReporterResults(t *testing.T) {
	r := New(io.Discard, zerolog.Nop())
	r.Project(context.Background(), ProjectResult{Source: "a", Status: StatusPushed})
	r.Project(context.Background(), ProjectResult{Source: "b", Status: StatusMissing})

	results := r.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Source)
	assert.Equal(t, StatusMissing, results[1].Status)
}
