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
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Resolve(t *testing.T) {
	s := NewStore()
	s.Add(
		"project:.*@regex",
		"project:foo@exact",
		"project:^lib@first",
		"project:foo$@second",
		"branch:default",
	)

	tests := []struct {
		name     string
		category string
		lookup   string
		strict   bool
		wantName string
		wantNil  bool
	}{
		{name: "exact_beats_regex", category: "project", lookup: "foo", wantName: "foo"},
		{name: "first_inserted_regex_wins", category: "project", lookup: "libfoo", wantName: ".*"},
		{name: "unknown_category", category: "tag", lookup: "v1", wantNil: true},
		{name: "default_fallback", category: "branch", lookup: "main", wantName: ""},
		{name: "strict_skips_default", category: "branch", lookup: "main", strict: true, wantNil: true},
		{name: "replace_suffix_folds", category: "project-replace", lookup: "foo", wantName: "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *Item
			if tt.strict {
				got = s.ResolveStrict(tt.category, tt.lookup)
			} else {
				got = s.Resolve(tt.category, tt.lookup)
			}
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestStore_ResolveInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Add("project:^lib@first", "project:foo$@second")
	got := s.Resolve("project", "libfoo")
	require.NotNil(t, got)
	assert.Equal(t, "^lib", got.Name, "earlier regex name should take precedence")

	s = NewStore()
	s.Add("project:foo$@second", "project:^lib@first")
	got = s.Resolve("project", "libfoo")
	require.NotNil(t, got)
	assert.Equal(t, "foo$", got.Name, "earlier regex name should take precedence")
}

func TestStore_Match(t *testing.T) {
	tests := []struct {
		name       string
		patterns   []string
		categories string
		value      string
		lookup     string
		want       bool
	}{
		{name: "no_rules_accepts", categories: "project", value: "anything", want: true},
		{name: "exclude_only_hit", patterns: []string{"project:!bar"}, categories: "project", value: "bar", want: false},
		{name: "exclude_only_miss", patterns: []string{"project:!bar"}, categories: "project", value: "baz", want: true},
		{name: "rewrite_only_is_ignored", patterns: []string{"project:~a~b~"}, categories: "project", value: "zzz", want: true},
		{
			name:       "rewrite_only_category_does_not_count",
			patterns:   []string{"p:~a~b~", "project:!x"},
			categories: "p,project",
			value:      "x",
			want:       false,
		},
		{
			name:       "categories_are_or_ed",
			patterns:   []string{"a:^foo", "b:^bar"},
			categories: "a,b",
			value:      "bar",
			want:       true,
		},
		{
			name:       "no_category_accepts",
			patterns:   []string{"a:^foo", "b:^bar"},
			categories: "a,b",
			value:      "qux",
			want:       false,
		},
		{
			name:       "value_used_as_name_when_name_is_empty",
			patterns:   []string{"project:libfoo@!.*"},
			categories: "project",
			value:      "libfoo",
			want:       false,
		},
		{
			name:       "value_not_used_when_name_is_given",
			patterns:   []string{"project:libfoo@!.*"},
			categories: "project",
			value:      "libfoo",
			lookup:     "other",
			want:       true,
		},
		{
			name:       "exclude_suffix_inverts",
			patterns:   []string{"project-exclude:^test/"},
			categories: "project",
			value:      "test/foo",
			want:       false,
		},
		{
			name:       "exclude_suffix_inverts_miss",
			patterns:   []string{"project-exclude:^test/"},
			categories: "project",
			value:      "platform/foo",
			want:       true,
		},
		{
			name:       "invalid_regex_never_matches",
			patterns:   []string{"project:("},
			categories: "project",
			value:      "(",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.Add(tt.patterns...)
			assert.Equal(t, tt.want, s.Match(tt.categories, tt.value, tt.lookup))
		})
	}
}

func TestStore_Replace(t *testing.T) {
	tests := []struct {
		name       string
		patterns   []string
		categories string
		value      string
		lookup     string
		want       string
	}{
		{name: "no_rules_unchanged", categories: "project", value: "libfoo", want: "libfoo"},
		{
			name:       "non_chained_stops_pipeline",
			patterns:   []string{"a:~foo~bar~", "b:~bar~baz~"},
			categories: "a,b",
			value:      "foo",
			want:       "bar",
		},
		{
			name:       "chained_lets_next_category_apply",
			patterns:   []string{"a:=foo=bar=", "b:~bar~baz~"},
			categories: "a,b",
			value:      "foo",
			want:       "baz",
		},
		{
			name:       "caller_order",
			patterns:   []string{"a:=o=0=", "b:=0=1="},
			categories: "a,b",
			value:      "foo",
			want:       "f11",
		},
		{
			name:       "caller_order_reversed",
			patterns:   []string{"a:=o=0=", "b:=0=1="},
			categories: "b,a",
			value:      "foo",
			want:       "f00",
		},
		{
			name:       "named_item_finalizes",
			patterns:   []string{"project:^lib@~^lib~lib-~", "project:~foo~bar~"},
			categories: "project",
			value:      "libfoo",
			lookup:     "libfoo",
			want:       "lib-foo",
		},
		{
			name:       "named_chain_continues_to_next_category",
			patterns:   []string{"project:^lib@=^lib=lib-=", "path:~-~_~"},
			categories: "project,path",
			value:      "libfoo",
			lookup:     "libfoo",
			want:       "lib_foo",
		},
		{
			name:       "default_used_when_resolved_item_cannot_replace",
			patterns:   []string{"project:libfoo@.*", "project:~libfoo~lib-foo~"},
			categories: "project",
			value:      "libfoo",
			lookup:     "libfoo",
			want:       "lib-foo",
		},
		{
			name:       "replace_suffix_shares_category",
			patterns:   []string{"project-rp:~a~b~"},
			categories: "project",
			value:      "a",
			want:       "b",
		},
		{
			name:       "at_sign_inside_substitution",
			patterns:   []string{"project:~a@b~c~"},
			categories: "project",
			value:      "xa@b",
			want:       "xc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.Add(tt.patterns...)
			assert.Equal(t, tt.want, s.Replace(tt.categories, tt.value, tt.lookup))
		})
	}
}

func TestStore_EndToEnd(t *testing.T) {
	s := NewStore()
	s.Add("project:libfoo@.*", "project:~libfoo~lib-foo~")

	assert.Equal(t, "lib-foo", s.Replace("project", "libfoo", "libfoo"))
	assert.True(t, s.Match("project", "libfoo", "libfoo"))
	assert.True(t, s.Match("project", "other", "other"), "no rule applies to other")

	s.Add("project:^lib")
	assert.False(t, s.Match("project", "other", "other"), "explicit default restricts other")
}

func TestStore_AddMerges(t *testing.T) {
	s := NewStore()
	s.Add("project:foo@a", "project:foo@!b", "project:c")
	s.AddExclude("project:d")

	items := s.Items("project")
	require.Len(t, items, 2)
	assert.Equal(t, "", items[0].Name, "default comes first")
	assert.Equal(t, []string{"c"}, items[0].Include)
	assert.Equal(t, []string{"d"}, items[0].Exclude)
	assert.Equal(t, "foo", items[1].Name)
	assert.Equal(t, []string{"a"}, items[1].Include)
	assert.Equal(t, []string{"b"}, items[1].Exclude)
}

func TestStore_AddItems(t *testing.T) {
	s := NewStore()
	s.Add("project:foo@a")
	s.AddItems(map[string][]*Item{
		"project-rp": {
			NewItem("project-rp", "foo", "~x~y~", false),
			NewItem("project-rp", "", "!z", false),
			{Category: "project"},
		},
		"": {NewItem("", "", "lost", false)},
	})

	assert.Equal(t, []string{"project"}, s.Categories())
	foo := s.Resolve("project", "foo")
	require.NotNil(t, foo)
	assert.Equal(t, []string{"a"}, foo.Include)
	assert.Equal(t, []Substitution{{Pattern: "x", Replacement: "y"}}, foo.Substitutions)

	def := s.Resolve("project", "")
	require.NotNil(t, def)
	assert.Equal(t, "project", def.Category)
	assert.Equal(t, []string{"z"}, def.Exclude)
}

func TestStore_Diagnostics(t *testing.T) {
	var buf bytes.Buffer
	s := NewStore(WithLogger(zerolog.New(&buf)))

	s.Add("nocategory", ":missing")
	assert.Equal(t, 0, s.Len())
	assert.Contains(t, buf.String(), "unknown pattern string")

	buf.Reset()
	s.Add("project:(")
	assert.Contains(t, buf.String(), "invalid regular expression")
	assert.Equal(t, 1, s.Len())

	buf.Reset()
	s.AddItems(map[string][]*Item{
		"branch": {{Name: "x", Substitutions: []Substitution{{Pattern: "a=b", Replacement: "c", Chain: true}}}},
	})
	assert.Contains(t, buf.String(), "will not parse back")

	buf.Reset()
	s.Add("branch:~a=b~c~")
	assert.Empty(t, buf.String(), "the other delimiter is fine inline")
}

func TestStore_EmptyPatternIsDropped(t *testing.T) {
	s := NewStore()
	s.Add("project:foo@", "project:")
	assert.Nil(t, s.Resolve("project", "foo"))
	assert.Empty(t, s.Items("project"))
}

func TestStore_String(t *testing.T) {
	s := NewStore()
	s.Add("b:x", "a:n@y,=o=p=")
	assert.Equal(t, "a:n@y,=o=p=\nb:x", s.String())
}

func TestStore_ConcurrentReads(t *testing.T) {
	s := NewStore()
	s.Add(
		"project:^platform/,!^vendor/",
		"project:=^platform/=aosp/=",
		"path:~/~_~",
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value := fmt.Sprintf("platform/lib%d", i)
			assert.True(t, s.Match("project", value, ""))
			assert.False(t, s.Match("project", "vendor/"+value, ""))
			assert.Equal(t, fmt.Sprintf("aosp_lib%d", i), s.Replace("project,path", value, ""))
		}(i)
	}
	wg.Wait()
}
