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
	"strings"

	"github.com/beevik/etree"
	"gitlab.com/tozd/go/errors"
)

func init() {
	RegisterFileParser(&XMLFileParser{})
}

var (
	xmlGroups = map[string]GroupKind{
		"patterns":         GroupPatterns,
		"exclude-patterns": GroupExclude,
		"rp-patterns":      GroupReplace,
		"replace-patterns": GroupReplace,
	}
	xmlEntries = map[string]EntryKind{
		"pattern":         EntryPattern,
		"exclude-pattern": EntryExclude,
		"rp-pattern":      EntryReplace,
		"replace-pattern": EntryReplace,
	}
)

// 🔧 XMLFileParser reads the XML definition format. The root element is
// either a group itself or holds groups as children.
type XMLFileParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *XMLFileParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xml")
}

// 📝 Parse parses the groups from XML
func (p *XMLFileParser) Parse(ctx context.Context, data []byte) ([]Group, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Errorf("parsing XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.New("pattern file has no root")
	}

	elements := []*etree.Element{root}
	if _, ok := xmlGroups[root.Tag]; !ok {
		elements = root.ChildElements()
	}

	var groups []Group
	for _, el := range elements {
		kind, ok := xmlGroups[el.Tag]
		if !ok {
			continue
		}

		g := Group{
			Kind:     kind,
			Category: el.SelectAttrValue("category", ""),
			Name:     el.SelectAttrValue("name", ""),
			Continue: xmlBool(el, "continue"),
		}
		for _, child := range el.ChildElements() {
			ek, ok := xmlEntries[child.Tag]
			if !ok {
				continue
			}
			e := Entry{
				Kind:     ek,
				Category: child.SelectAttrValue("category", ""),
				Name:     child.SelectAttrValue("name", ""),
				Value:    child.SelectAttrValue("value", ""),
				Continue: xmlBool(child, "continue"),
			}
			if attr := child.SelectAttr("replace"); attr != nil {
				replace := attr.Value
				e.Replace = &replace
			}
			g.Entries = append(g.Entries, e)
		}
		groups = append(groups, g)
	}

	return groups, nil
}

// xmlBool reads true/yes and false/no; anything else is unset
func xmlBool(el *etree.Element, key string) *bool {
	var b bool
	switch strings.ToLower(el.SelectAttrValue(key, "")) {
	case "true", "yes":
		b = true
	case "false", "no":
		b = false
	default:
		return nil
	}
	return &b
}
