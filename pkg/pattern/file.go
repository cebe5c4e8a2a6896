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
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// GroupKind tells how the entries of a group are classified
type GroupKind int

const (
	GroupPatterns GroupKind = iota // plain patterns
	GroupExclude                   // entries are excludes
	GroupReplace                   // entries may carry replacements
)

// EntryKind is the spelling of a single definition entry
type EntryKind int

const (
	EntryPattern EntryKind = iota
	EntryExclude
	EntryReplace
)

// 📦 Group is a pattern group of a definition file. Its category, name
// and continue flag are defaults for its entries.
type Group struct {
	Kind     GroupKind
	Category string
	Name     string
	Continue *bool
	Entries  []Entry
}

// 🧩 Entry is one leaf of a group
type Entry struct {
	Kind     EntryKind
	Category string
	Name     string
	Value    string  // defaults to Name
	Replace  *string // present turns the entry into a substitution
	Continue *bool
}

// Definitions maps a category to the items declared for it, in file order
type Definitions map[string][]*Item

// 🔌 FileParser reads one definition file syntax into groups
type FileParser interface {
	// 📝 Parse parses the groups from bytes
	Parse(ctx context.Context, data []byte) ([]Group, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ fileParsers is a list of available parsers
	fileParsers []FileParser
)

// 📝 RegisterFileParser registers a parser
func RegisterFileParser(p FileParser) {
	fileParsers = append(fileParsers, p)
}

// 🎯 GetFileParser returns a parser that can handle the given file. Files
// with an unknown extension are read as XML.
func GetFileParser(filename string) FileParser {
	for _, p := range fileParsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return &XMLFileParser{}
}

// 🎯 ParseFile reads and parses a definition file
func ParseFile(ctx context.Context, path string) (Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading pattern file: %w", err)
	}

	groups, err := GetFileParser(path).Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing pattern file %s: %w", path, err)
	}

	return Build(ctx, groups), nil
}

// LoadFile is ParseFile that reports failures to the context logger and
// returns empty definitions instead
func LoadFile(ctx context.Context, path string) Definitions {
	defs, err := ParseFile(ctx, path)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("path", path).Msg("error to load pattern file")
		return Definitions{}
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("categories", len(defs)).
		Msg("loaded pattern file")
	return defs
}

// 🏗️ Build turns groups into items, one item per entry. Entries inherit
// category, name and continue from their group.
func Build(ctx context.Context, groups []Group) Definitions {
	defs := Definitions{}
	for _, g := range groups {
		for _, e := range g.Entries {
			it := buildItem(g, e)
			if it.Category == "" {
				zerolog.Ctx(ctx).Warn().
					Str("name", it.Name).
					Str("value", e.Value).
					Msg("pattern entry without category, dropped")
				continue
			}
			if it.Len() == 0 {
				continue
			}
			defs[it.Category] = append(defs[it.Category], it)
		}
	}
	return defs
}

func buildItem(g Group, e Entry) *Item {
	name := firstOf(e.Name, g.Name)
	category, inverted := CanonicalCategory(firstOf(e.Category, g.Category))
	value := firstOf(e.Value, e.Name)

	cont := e.Continue
	if cont == nil {
		cont = g.Continue
	}

	replace := e.Replace
	if e.Kind == EntryExclude && g.Kind != GroupReplace {
		replace = nil
	}

	it := &Item{Category: category, Name: name}
	switch {
	case replace != nil:
		it.AddSubstitution(Substitution{
			Pattern:     value,
			Replacement: *replace,
			Chain:       cont != nil && *cont,
		})
	case IsSubstitution(value) && cont != nil:
		it.AddChained(value, false, *cont)
	case IsSubstitution(value):
		it.Add(value, false)
	default:
		exclude := g.Kind == GroupExclude || e.Kind == EntryExclude
		it.Add(value, exclude != inverted)
	}
	return it
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
