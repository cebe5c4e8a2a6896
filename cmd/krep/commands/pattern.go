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
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/krep/cmd/krep/opts"
	"github.com/walteh/krep/pkg/pattern"
	"gitlab.com/tozd/go/errors"
)

// NewPatternCmd creates the pattern command and its subcommands
func NewPatternCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Evaluate the loaded patterns",
		Long: `pattern runs the pattern store against values given on the command
line, which is handy to check a rule file before a mirror run.

CATEGORIES is a comma separated list such as p,project.`,
	}

	cmd.AddCommand(
		newMatchCmd(opts),
		newReplaceCmd(opts),
		newResolveCmd(opts),
		newShowCmd(opts),
	)

	return cmd
}

func newMatchCmd(opts *opts.RootOpts) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:     "match CATEGORIES VALUE",
		Short:   "Print whether VALUE passes the filters of CATEGORIES",
		Example: `  krep -p 'project:^platform/' pattern match p,project platform/build`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := opts.Store.Match(args[0], args[1], name)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), ok)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name to look up instead of VALUE")
	return cmd
}

func newReplaceCmd(opts *opts.RootOpts) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:     "replace CATEGORIES VALUE",
		Short:   "Print VALUE rewritten by the substitutions of CATEGORIES",
		Example: `  krep -p 'project:~^platform/~aosp/~' pattern replace p,project platform/build`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), opts.Store.Replace(args[0], args[1], name))
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name to look up, defaults to the category default")
	return cmd
}

func newResolveCmd(opts *opts.RootOpts) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "resolve CATEGORY [NAME]",
		Short: "Print the item governing NAME in CATEGORY",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 1 {
				name = args[1]
			}

			var item *pattern.Item
			if strict {
				item = opts.Store.ResolveStrict(args[0], name)
			} else {
				item = opts.Store.Resolve(args[0], name)
			}
			if item == nil {
				return errors.Errorf("no item for %q in category %s", name, args[0])
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), item)
			return err
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "do not fall back to the category default")
	return cmd
}

func newShowCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "show [CATEGORY]",
		Short: "Render the loaded items as a table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := opts.Store.Categories()
			if len(args) == 1 {
				categories = []string{args[0]}
			}

			data := pterm.TableData{{"Category", "Name", "Include", "Exclude", "Replace"}}
			for _, c := range categories {
				for _, it := range opts.Store.Items(c) {
					subs := make([]string, 0, len(it.Substitutions))
					for _, s := range it.Substitutions {
						subs = append(subs, s.String())
					}
					name := it.Name
					if name == "" {
						name = "(default)"
					}
					data = append(data, []string{
						it.Category,
						name,
						strings.Join(it.Include, " "),
						strings.Join(it.Exclude, " "),
						strings.Join(subs, " "),
					})
				}
			}

			if len(data) == 1 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no patterns loaded")
				return err
			}

			out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering table: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}
