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
	"strings"
)

// 🔣 Delimiters of the inline grammar
const (
	CategoryDelimiter       = ":"
	PatternDelimiter        = ","
	OppositeDelimiter       = "!"
	NameDelimiter           = "@"
	ReplacementDelimiter    = "~"
	ChainedReplaceDelimiter = "="
)

// 🔄 Substitution is one regex rewrite of an item
type Substitution struct {
	Pattern     string // regex to search for
	Replacement string // replacement text, \1 and \g<name> back references allowed
	Chain       bool   // let later categories rewrite the value again
}

// String renders the substitution with the delimiter matching its chain
// flag. The result only parses back when Inline reports true.
func (s Substitution) String() string {
	d := s.delimiter()
	return d + s.Pattern + d + s.Replacement + d
}

// Inline reports whether String parses back to s: neither the pattern nor
// the replacement may hold the delimiter or a comma.
func (s Substitution) Inline() bool {
	text := s.Pattern + s.Replacement
	return !strings.Contains(text, s.delimiter()) && !strings.Contains(text, PatternDelimiter)
}

func (s Substitution) delimiter() string {
	if s.Chain {
		return ChainedReplaceDelimiter
	}
	return ReplacementDelimiter
}

// 📦 Item is the atomic include/exclude/substitution unit of one category.
// An empty Name marks the category default.
type Item struct {
	Category      string
	Name          string
	Include       []string
	Exclude       []string
	Substitutions []Substitution
}

// 🏭 NewItem creates an item and adds the inline patterns in text to it
func NewItem(category, name, text string, exclude bool) *Item {
	it := &Item{Category: category, Name: name}
	it.Add(text, exclude)
	return it
}

// Len counts includes, excludes and substitutions
func (it *Item) Len() int {
	return len(it.Include) + len(it.Exclude) + len(it.Substitutions)
}

// Replaceable reports whether the item carries substitutions
func (it *Item) Replaceable() bool {
	return len(it.Substitutions) > 0
}

// ReplaceableOnly reports a rewrite-only item, which matching ignores
func (it *Item) ReplaceableOnly() bool {
	return len(it.Substitutions) > 0 && len(it.Include) == 0 && len(it.Exclude) == 0
}

// Add parses comma separated patterns and appends them to the item.
// With exclude set, the collected includes and excludes swap roles.
func (it *Item) Add(text string, exclude bool) {
	it.add(text, exclude, nil)
}

// AddChained is Add with the chain flag of every parsed substitution set to
// chain, whatever delimiter the token used.
func (it *Item) AddChained(text string, exclude bool, chain bool) {
	it.add(text, exclude, &chain)
}

// AddSubstitution appends a prebuilt substitution. An empty pattern stands
// for the item name; with neither the substitution is dropped.
func (it *Item) AddSubstitution(s Substitution) {
	if s.Pattern == "" {
		s.Pattern = it.Name
	}
	if s.Pattern == "" {
		return
	}
	it.Substitutions = append(it.Substitutions, s)
}

func (it *Item) add(text string, exclude bool, chain *bool) {
	inc, exc, subs := it.split(text, chain)
	if exclude {
		inc, exc = exc, inc
	}

	it.Include = append(it.Include, inc...)
	it.Exclude = append(it.Exclude, exc...)
	it.Substitutions = append(it.Substitutions, subs...)
}

func (it *Item) split(text string, chain *bool) (inc, exc []string, subs []Substitution) {
	for _, token := range strings.Split(strings.TrimSpace(text), PatternDelimiter) {
		token = strings.TrimSpace(token)
		switch {
		case token == "":
		case IsSubstitution(token):
			s := parseSubstitution(token)
			if s.Pattern == "" {
				s.Pattern = it.Name
			}
			if s.Pattern == "" {
				continue
			}
			if chain != nil {
				s.Chain = *chain
			}
			subs = append(subs, s)
		case strings.HasPrefix(token, OppositeDelimiter):
			exc = append(exc, token[len(OppositeDelimiter):])
		default:
			inc = append(inc, token)
		}
	}
	return inc, exc, subs
}

// IsSubstitution reports whether token is DELIM OLD DELIM NEW DELIM with
// DELIM one of ~ or =, used exactly three times.
func IsSubstitution(token string) bool {
	if token == "" {
		return false
	}
	d := token[:1]
	if d != ReplacementDelimiter && d != ChainedReplaceDelimiter {
		return false
	}
	parts := strings.Split(token, d)
	return len(parts) == 4 && parts[0] == "" && parts[3] == ""
}

func parseSubstitution(token string) Substitution {
	d := token[:1]
	parts := strings.Split(token, d)
	return Substitution{
		Pattern:     parts[1],
		Replacement: parts[2],
		Chain:       d == ChainedReplaceDelimiter,
	}
}

// Match tests value, a comma separated list of candidates, against the item.
// A candidate prefixed with ! inverts the result it produces. The first
// candidate that resolves decides; an item with no filters accepts.
func (it *Item) Match(value string) bool {
	for _, candidate := range strings.Split(value, PatternDelimiter) {
		opposite := strings.HasPrefix(candidate, OppositeDelimiter)
		if opposite {
			candidate = candidate[len(OppositeDelimiter):]
		}

		for _, inc := range it.Include {
			if search(inc, candidate) {
				return !opposite
			}
		}

		for _, exc := range it.Exclude {
			if search(exc, candidate) {
				return opposite
			}
		}

		if len(it.Include) > 0 {
			return opposite
		} else if len(it.Exclude) > 0 {
			return !opposite
		}
	}

	return true
}

// Replace applies every substitution in order and returns the rewritten
// value with the chain flag of the last substitution applied.
func (it *Item) Replace(value string) (string, bool) {
	chain := false
	for _, s := range it.Substitutions {
		value = substitute(s, value)
		chain = s.Chain
	}
	return value, chain
}

// merge appends the patterns of other
func (it *Item) merge(other *Item) {
	it.Include = append(it.Include, other.Include...)
	it.Exclude = append(it.Exclude, other.Exclude...)
	it.Substitutions = append(it.Substitutions, other.Substitutions...)
}

// 📝 String renders CATEGORY:NAME@PATTERNS, parseable by Store.Add
func (it *Item) String() string {
	patterns := make([]string, 0, it.Len())
	patterns = append(patterns, it.Include...)
	for _, e := range it.Exclude {
		patterns = append(patterns, OppositeDelimiter+e)
	}
	for _, s := range it.Substitutions {
		patterns = append(patterns, s.String())
	}

	var b strings.Builder
	if it.Category != "" {
		b.WriteString(it.Category)
		b.WriteString(CategoryDelimiter)
	}
	if it.Name != "" {
		b.WriteString(it.Name)
		b.WriteString(NameDelimiter)
	}
	b.WriteString(strings.Join(patterns, PatternDelimiter))
	return b.String()
}

// patterns lists every regex the item compiles, for validation
func (it *Item) patterns() []string {
	out := make([]string, 0, it.Len())
	out = append(out, it.Include...)
	out = append(out, it.Exclude...)
	for _, s := range it.Substitutions {
		out = append(out, s.Pattern)
	}
	return out
}
