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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	projectIndent = 4  // spaces to indent project entries
	nameWidth     = 40 // Base width for the project name
	statusWidth   = 10 // Width for status text
)

// Status is the outcome of one project
type Status int

const (
	StatusPushed   Status = iota // refs were pushed
	StatusFiltered               // rejected by the project patterns
	StatusMissing                // no mirror repository on disk
	StatusFailed                 // a push failed
)

func (s Status) String() string {
	switch s {
	case StatusPushed:
		return "pushed"
	case StatusFiltered:
		return "filtered"
	case StatusMissing:
		return "missing"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// 🎯 ProjectResult is the outcome of mirroring one project
type ProjectResult struct {
	Source string // Project name in the mirror
	Target string // Project name on the remote, after renaming
	Status Status
	Heads  int   // Heads pushed
	Tags   int   // Tags pushed
	DryRun bool  // Nothing was actually pushed
	Err    error // Set for StatusFailed
}

// 🎯 Reporter prints mirror progress to the console and mirrors every
// line to a zerolog logger
type Reporter struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	results []ProjectResult
}

// 🏭 New creates a new reporter
func New(console io.Writer, zlog zerolog.Logger) *Reporter {
	return &Reporter{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the reporter from context
func FromContext(ctx context.Context) *Reporter {
	r, ok := ctx.Value(contextKey{}).(*Reporter)
	if !ok {
		panic("reporter not found in context")
	}
	return r
}

// 🎯 NewContext adds the reporter to context
func NewContext(ctx context.Context, r *Reporter) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// 📝 formatProject formats a project result for display
func (r *Reporter) formatProject(res ProjectResult) string {
	var symbol rune
	var symbolColor color.Attribute
	switch res.Status {
	case StatusPushed:
		symbol = '✓'
		symbolColor = color.FgGreen
	case StatusFiltered:
		symbol = '-'
		symbolColor = color.FgYellow
	case StatusMissing:
		symbol = '?'
		symbolColor = color.FgYellow
	default:
		symbol = '✗'
		symbolColor = color.FgRed
	}

	name := res.Source
	if res.Target != "" && res.Target != res.Source {
		name = res.Source + " → " + res.Target
	}

	status := res.Status.String()
	if res.DryRun && res.Status == StatusPushed {
		status = "dry-run"
	}

	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", projectIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, name),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", statusWidth, status)))

	switch {
	case res.Status == StatusPushed:
		line += color.New(color.Faint).Sprintf(" %d heads, %d tags", res.Heads, res.Tags)
	case res.Err != nil:
		line += " " + res.Err.Error()
	}
	return line
}

// 📝 Project reports the result of one project
func (r *Reporter) Project(ctx context.Context, res ProjectResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, res)
	fmt.Fprintln(r.console, r.formatProject(res))

	ev := r.zlog.Info()
	if res.Status == StatusFailed {
		ev = r.zlog.Error().Err(res.Err)
	}
	ev.Str("source", res.Source).
		Str("target", res.Target).
		Str("status", res.Status.String()).
		Int("heads", res.Heads).
		Int("tags", res.Tags).
		Bool("dry_run", res.DryRun).
		Msg("project mirrored")
}

// Results returns a copy of the reported results in report order
func (r *Reporter) Results() []ProjectResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProjectResult(nil), r.results...)
}

// 📝 Summary prints the totals per status
func (r *Reporter) Summary() {
	r.mu.Lock()
	counts := map[Status]int{}
	for _, res := range r.results {
		counts[res.Status]++
	}
	r.mu.Unlock()

	msg := fmt.Sprintf("%d pushed, %d filtered, %d missing, %d failed",
		counts[StatusPushed], counts[StatusFiltered], counts[StatusMissing], counts[StatusFailed])
	if counts[StatusFailed] > 0 {
		r.Error(msg)
		return
	}
	r.Success(msg)
}

// 📝 LogNewline logs a newline
func (r *Reporter) LogNewline() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.console)
}

// 📝 Header logs a header
func (r *Reporter) Header(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("krep")
	fmt.Fprintf(r.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	r.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (r *Reporter) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	r.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (r *Reporter) Warning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	r.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (r *Reporter) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	r.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (r *Reporter) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	r.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (r *Reporter) Infof(format string, args ...interface{}) {
	r.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (r *Reporter) Warningf(format string, args ...interface{}) {
	r.Warning(fmt.Sprintf(format, args...))
}
