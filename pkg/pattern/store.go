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
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// replaceSuffixes fold a "replace" spelling into its base category
	replaceSuffixes = []string{"-rp", "-replace", "-replacement"}
	// excludeSuffixes fold an "exclude" spelling and invert its patterns
	excludeSuffixes = []string{"-ex", "-exclude"}
)

// 🏷️ CanonicalCategory strips the replace and exclude spellings of a
// category. The second result reports an exclude spelling.
func CanonicalCategory(category string) (string, bool) {
	category = strings.TrimSpace(category)
	for _, suffix := range replaceSuffixes {
		if len(category) > len(suffix) && strings.HasSuffix(category, suffix) {
			return category[:len(category)-len(suffix)], false
		}
	}
	for _, suffix := range excludeSuffixes {
		if len(category) > len(suffix) && strings.HasSuffix(category, suffix) {
			return category[:len(category)-len(suffix)], true
		}
	}
	return category, false
}

func canonical(category string) string {
	c, _ := CanonicalCategory(category)
	return c
}

// bucket holds the items of one category. order lists the named items in
// insertion order and always has the same keys as named.
type bucket struct {
	named    map[string]*Item
	order    []string
	fallback *Item
}

func (b *bucket) lookup(name string) *Item {
	if name == "" {
		return b.fallback
	}
	return b.named[name]
}

func (b *bucket) insert(it *Item) {
	if it.Name == "" {
		b.fallback = it
		return
	}
	b.named[it.Name] = it
	b.order = append(b.order, it.Name)
}

// scan returns the first named item, in insertion order, whose name read
// as a regex matches name
func (b *bucket) scan(name string) *Item {
	for _, n := range b.order {
		if search(n, name) {
			return b.named[n]
		}
	}
	return nil
}

// 📚 Store owns all items indexed by category and name. It is filled once
// and then queried; queries are safe to run concurrently as long as no
// Add or Load runs at the same time.
type Store struct {
	logger     zerolog.Logger
	categories map[string]*bucket
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for diagnostics
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// 🏭 NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger:     zerolog.Nop(),
		categories: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of categories
func (s *Store) Len() int {
	return len(s.categories)
}

func (s *Store) bucket(category string, create bool) *bucket {
	b, ok := s.categories[category]
	if !ok && create {
		b = &bucket{named: make(map[string]*Item)}
		s.categories[category] = b
	}
	return b
}

// ➕ Add registers inline pattern strings of the form
// CATEGORY:[NAME@]PATTERN[,PATTERN...]. Strings without a category are
// logged and dropped.
func (s *Store) Add(patterns ...string) {
	s.add(patterns, false)
}

// AddExclude is Add with includes and excludes swapped
func (s *Store) AddExclude(patterns ...string) {
	s.add(patterns, true)
}

func (s *Store) add(patterns []string, exclude bool) {
	for _, text := range patterns {
		idx := strings.Index(text, CategoryDelimiter)
		if idx <= 0 {
			s.logger.Error().Str("pattern", text).Msg("unknown pattern string")
			continue
		}

		category, inverted := CanonicalCategory(text[:idx])
		name, value := splitName(text[idx+len(CategoryDelimiter):])

		added := NewItem(category, name, value, exclude != inverted)
		if added.Len() == 0 {
			s.logger.Debug().Str("pattern", text).Msg("empty pattern string")
			continue
		}
		s.validate(added)

		b := s.bucket(category, true)
		if it := b.lookup(name); it != nil {
			it.merge(added)
			continue
		}
		b.insert(added)
	}
}

// splitName separates NAME@ from the pattern text. The name may not
// contain pattern syntax, so an @ inside a pattern is left alone.
func splitName(value string) (string, string) {
	idx := strings.Index(value, NameDelimiter)
	if idx <= 0 {
		return "", value
	}
	name := value[:idx]
	if strings.ContainsAny(name, PatternDelimiter+ReplacementDelimiter+ChainedReplaceDelimiter) ||
		strings.HasPrefix(name, OppositeDelimiter) {
		return "", value
	}
	return name, value[idx+len(NameDelimiter):]
}

// AddItems merges prebuilt items, typically from a definition file, keyed
// by category. Items sharing a category and name are merged in order.
func (s *Store) AddItems(items map[string][]*Item) {
	categories := make([]string, 0, len(items))
	for c := range items {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		category := canonical(c)
		if category == "" {
			s.logger.Error().Int("items", len(items[c])).Msg("pattern items without category")
			continue
		}

		b := s.bucket(category, true)
		for _, item := range items[c] {
			if item == nil || item.Len() == 0 {
				continue
			}
			s.validate(item)
			if it := b.lookup(item.Name); it != nil {
				it.merge(item)
				continue
			}
			cp := &Item{Category: category, Name: item.Name}
			cp.merge(item)
			b.insert(cp)
		}
	}
}

// 📂 Load reads a definition file and adds its items. A file that cannot
// be read or parsed is logged and adds nothing.
func (s *Store) Load(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if s.logger.GetLevel() != zerolog.Disabled {
		ctx = s.logger.WithContext(ctx)
	}
	s.AddItems(LoadFile(ctx, path))
}

func (s *Store) validate(it *Item) {
	check := func(kind, p string) {
		if _, err := compile(p); err != nil {
			s.logger.Warn().
				Err(err).
				Str("category", it.Category).
				Str("name", it.Name).
				Str(kind, p).
				Msg("invalid regular expression, it will never match")
		}
	}
	if it.Name != "" {
		check("name", it.Name)
	}
	for _, p := range it.patterns() {
		check("pattern", p)
	}
	for _, sub := range it.Substitutions {
		if !sub.Inline() {
			s.logger.Warn().
				Str("category", it.Category).
				Str("name", it.Name).
				Stringer("substitution", sub).
				Msg("substitution holds its own delimiter or a comma, its inline form will not parse back")
		}
	}
}

// resolve finds the item governing name in category: an exact name wins,
// then the first named item whose name matches as a regex in insertion
// order, then, unless strict, the category default.
func (s *Store) resolve(category, name string, strict bool) *Item {
	b := s.bucket(canonical(category), false)
	if b == nil {
		return nil
	}
	if name != "" {
		if it, ok := b.named[name]; ok {
			return it
		}
		if it := b.scan(name); it != nil {
			return it
		}
	}
	if strict {
		return nil
	}
	return b.fallback
}

// Resolve returns the item governing name in category, falling back to the
// category default. An empty name asks for the default directly.
func (s *Store) Resolve(category, name string) *Item {
	return s.resolve(category, name, false)
}

// ResolveStrict is Resolve without the category default
func (s *Store) ResolveStrict(category, name string) *Item {
	return s.resolve(category, name, true)
}

// ✅ Match reports whether value passes the filters of the comma separated
// categories, OR-ing the verdicts of every category with a usable item.
// Rewrite-only items do not count. When name is empty and no category
// produced an item, value itself is used as the lookup name. Without any
// usable item the value is accepted.
func (s *Store) Match(categories, value, name string) bool {
	ret, existed := s.match(categories, value, name)
	if !existed && name == "" {
		ret, existed = s.match(categories, value, value)
	}
	if !existed {
		return true
	}
	return ret
}

func (s *Store) match(categories, value, name string) (bool, bool) {
	ret, existed := false, false
	for _, category := range splitCategories(categories) {
		it := s.resolve(category, name, false)
		if it == nil || it.ReplaceableOnly() {
			continue
		}
		existed = true
		ret = it.Match(value) || ret
	}
	return ret, existed
}

// 🔄 Replace rewrites value through the comma separated categories in the
// given order. Within a category the named items whose name matches name
// are tried first; a rewrite that is not chained ends the pipeline. When
// no named item fired, the resolved item (or the category default if the
// resolved item has no substitutions) is applied, and unless its last
// substitution is chained the result is returned at once.
func (s *Store) Replace(categories, value, name string) string {
	for _, category := range splitCategories(categories) {
		b := s.bucket(canonical(category), false)
		if b == nil {
			continue
		}

		fired := false
		if name != "" {
			for _, n := range b.order {
				it := b.named[n]
				if !it.Replaceable() || !search(n, name) {
					continue
				}
				out, chain := it.Replace(value)
				if out != value {
					fired = true
				}
				value = out
				if fired && !chain {
					return value
				}
			}
		}
		if fired {
			continue
		}

		it := s.resolve(category, name, false)
		if it == nil || !it.Replaceable() {
			it = b.fallback
		}
		if it == nil || !it.Replaceable() {
			continue
		}

		out, chain := it.Replace(value)
		if !chain {
			return out
		}
		value = out
	}

	return value
}

// Categories lists the categories in sorted order
func (s *Store) Categories() []string {
	out := make([]string, 0, len(s.categories))
	for c := range s.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Items lists the items of a category, the default first and then the
// named items in insertion order
func (s *Store) Items(category string) []*Item {
	b := s.bucket(canonical(category), false)
	if b == nil {
		return nil
	}
	out := make([]*Item, 0, len(b.order)+1)
	if b.fallback != nil {
		out = append(out, b.fallback)
	}
	for _, n := range b.order {
		out = append(out, b.named[n])
	}
	return out
}

// 📝 String renders every item as an inline pattern string, one per line
func (s *Store) String() string {
	var lines []string
	for _, c := range s.Categories() {
		for _, it := range s.Items(c) {
			if it.Len() > 0 {
				lines = append(lines, it.String())
			}
		}
	}
	return strings.Join(lines, "\n")
}

func splitCategories(categories string) []string {
	var out []string
	for _, c := range strings.Split(categories, PatternDelimiter) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
