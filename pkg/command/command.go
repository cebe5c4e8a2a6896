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

// Package command runs external programs such as git.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🚦 Executor runs commands. Runner is the process backed implementation;
// tests substitute their own.
type Executor interface {
	// Run executes a command that changes state. It is skipped in dry-run.
	Run(ctx context.Context, dir, name string, args ...string) error
	// Output executes a read-only command and returns its trimmed stdout.
	Output(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ❌ ExitError is returned for a command that exited non-zero
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.Code, e.Stderr)
}

// 🏃 Runner executes commands as child processes
type Runner struct {
	// DryRun logs state changing commands instead of running them
	DryRun bool
}

var _ Executor = (*Runner)(nil)

// Run implements Executor
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) error {
	r.log(ctx, dir, name, args, r.DryRun)
	if r.DryRun {
		return nil
	}
	_, err := r.exec(ctx, dir, name, args)
	return err
}

// Output implements Executor
func (r *Runner) Output(ctx context.Context, dir, name string, args ...string) (string, error) {
	r.log(ctx, dir, name, args, false)
	out, err := r.exec(ctx, dir, name, args)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Runner) log(ctx context.Context, dir, name string, args []string, dry bool) {
	line := strings.Join(append([]string{name}, args...), " ")
	if dry {
		line = "[-] " + line
	}
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg(line)
}

func (r *Runner) exec(ctx context.Context, dir, name string, args []string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", errors.WithStack(&ExitError{
				Command: name + " " + strings.Join(args, " "),
				Code:    exitErr.ExitCode(),
				Stderr:  strings.TrimSpace(stderr.String()),
			})
		}
		return "", errors.Errorf("running %s: %w", name, err)
	}

	if stderr.Len() > 0 {
		zerolog.Ctx(ctx).Debug().Str("stderr", strings.TrimSpace(stderr.String())).Msg(name)
	}
	return stdout.String(), nil
}
