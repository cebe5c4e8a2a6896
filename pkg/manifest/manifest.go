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

// Package manifest reads git-repo manifests: remotes, the default element,
// projects with their copyfile and linkfile children, remove-project and
// include.
package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🌐 Remote is a <remote> element
type Remote struct {
	Name     string
	Fetch    string
	Review   string
	Revision string
}

// Default is the <default> element
type Default struct {
	Remote   string
	Revision string
}

// FileCopy is a <copyfile> or <linkfile> child of a project
type FileCopy struct {
	Src  string
	Dest string
}

// 📦 Project is a <project> element with defaults applied
type Project struct {
	Name      string
	Path      string
	Revision  string
	Remote    string
	Groups    []string
	CopyFiles []FileCopy
	LinkFiles []FileCopy
}

// 📚 Manifest is a parsed manifest with its includes merged in document
// order
type Manifest struct {
	Remotes  map[string]Remote
	Default  Default
	Projects []Project
}

// 🎯 Load reads the manifest at path and every file it includes. Include
// names are resolved relative to the including file; a file is read at
// most once.
func Load(ctx context.Context, path string) (*Manifest, error) {
	m := &Manifest{Remotes: map[string]Remote{}}
	if err := m.load(ctx, path, map[string]bool{}); err != nil {
		return nil, err
	}
	m.applyDefaults()

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("projects", len(m.Projects)).
		Int("remotes", len(m.Remotes)).
		Msg("loaded manifest")
	return m, nil
}

// Parse reads a single manifest document. Includes are resolved against
// dir.
func Parse(ctx context.Context, data []byte, dir string) (*Manifest, error) {
	m := &Manifest{Remotes: map[string]Remote{}}
	if err := m.parse(ctx, data, dir, map[string]bool{}); err != nil {
		return nil, err
	}
	m.applyDefaults()
	return m, nil
}

func (m *Manifest) load(ctx context.Context, path string, seen map[string]bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Errorf("resolving manifest path %s: %w", path, err)
	}
	if seen[abs] {
		zerolog.Ctx(ctx).Warn().Str("path", abs).Msg("manifest already included, skipped")
		return nil
	}
	seen[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return errors.Errorf("reading manifest: %w", err)
	}

	if err := m.parse(ctx, data, filepath.Dir(abs), seen); err != nil {
		return errors.Errorf("parsing manifest %s: %w", path, err)
	}
	return nil
}

func (m *Manifest) parse(ctx context.Context, data []byte, dir string, seen map[string]bool) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return errors.Errorf("parsing XML: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "manifest" {
		return errors.New("missing <manifest> root element")
	}

	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "remote":
			r := Remote{
				Name:     el.SelectAttrValue("name", ""),
				Fetch:    el.SelectAttrValue("fetch", ""),
				Review:   el.SelectAttrValue("review", ""),
				Revision: el.SelectAttrValue("revision", ""),
			}
			if r.Name == "" {
				return errors.New("<remote> without name")
			}
			m.Remotes[r.Name] = r

		case "default":
			m.Default = Default{
				Remote:   el.SelectAttrValue("remote", m.Default.Remote),
				Revision: el.SelectAttrValue("revision", m.Default.Revision),
			}

		case "project":
			p, err := parseProject(el)
			if err != nil {
				return err
			}
			m.Projects = append(m.Projects, p)

		case "remove-project":
			m.remove(el.SelectAttrValue("name", ""))

		case "include":
			name := el.SelectAttrValue("name", "")
			if name == "" {
				return errors.New("<include> without name")
			}
			if !filepath.IsAbs(name) {
				name = filepath.Join(dir, name)
			}
			if err := m.load(ctx, name, seen); err != nil {
				return err
			}
		}
	}

	return nil
}

func parseProject(el *etree.Element) (Project, error) {
	p := Project{
		Name:     el.SelectAttrValue("name", ""),
		Path:     el.SelectAttrValue("path", ""),
		Revision: el.SelectAttrValue("revision", ""),
		Remote:   el.SelectAttrValue("remote", ""),
	}
	if p.Name == "" {
		return p, errors.New("<project> without name")
	}

	if groups := el.SelectAttrValue("groups", ""); groups != "" {
		for _, g := range strings.FieldsFunc(groups, func(r rune) bool {
			return r == ',' || r == ' '
		}) {
			p.Groups = append(p.Groups, g)
		}
	}

	for _, child := range el.ChildElements() {
		fc := FileCopy{
			Src:  child.SelectAttrValue("src", ""),
			Dest: child.SelectAttrValue("dest", ""),
		}
		switch child.Tag {
		case "copyfile":
			p.CopyFiles = append(p.CopyFiles, fc)
		case "linkfile":
			p.LinkFiles = append(p.LinkFiles, fc)
		}
	}
	return p, nil
}

func (m *Manifest) remove(name string) {
	kept := m.Projects[:0]
	for _, p := range m.Projects {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	m.Projects = kept
}

// applyDefaults fills path, remote and revision. A project revision falls
// back to its remote's revision and then to the default.
func (m *Manifest) applyDefaults() {
	for i := range m.Projects {
		p := &m.Projects[i]
		if p.Path == "" {
			p.Path = p.Name
		}
		if p.Remote == "" {
			p.Remote = m.Default.Remote
		}
		if p.Revision == "" {
			p.Revision = m.Remotes[p.Remote].Revision
		}
		if p.Revision == "" {
			p.Revision = m.Default.Revision
		}
	}
}

// Project returns the project with the given name
func (m *Manifest) Project(name string) (Project, bool) {
	for _, p := range m.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// InGroup reports whether the project belongs to group. Every project is in
// the "all" and "default" groups unless it is marked notdefault.
func (p Project) InGroup(group string) bool {
	for _, g := range p.Groups {
		if g == group {
			return true
		}
	}
	switch group {
	case "all":
		return true
	case "default":
		return !p.InGroup("notdefault")
	}
	return false
}
