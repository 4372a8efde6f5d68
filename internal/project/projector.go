// Package project turns a raw extracted graph into the page list of one
// build cycle: it resolves module cross-references against the global entity
// sets, attaches component side inputs and emits page descriptors.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/ngdocs/internal/markdown"
	"git.home.luguber.info/inful/ngdocs/internal/model"
	"git.home.luguber.info/inful/ngdocs/internal/pages"
)

// Projector prepares entities for rendering. One projector is constructed at
// process start and reused across rebuild cycles.
type Projector struct {
	conv *markdown.Converter
	// sourceRoot resolves entity file paths for side inputs (READMEs,
	// external templates).
	sourceRoot string
}

// NewProjector returns a projector rooted at the given source directory.
func NewProjector(conv *markdown.Converter, sourceRoot string) *Projector {
	return &Projector{conv: conv, sourceRoot: sourceRoot}
}

// FilterGraph returns a copy of the graph in which every module member list
// references only entities present in the corresponding global set. Unresolved
// references (typically members of un-analyzed third-party libraries) are
// dropped silently: partial graphs must not block page generation.
func (p *Projector) FilterGraph(g *model.Graph) *model.Graph {
	out := *g
	// Components get side inputs attached later in the cycle; they must be
	// copies, not aliases, so the global entity set stays read-only.
	out.Components = append([]model.Component(nil), g.Components...)
	out.Modules = make([]model.Module, len(g.Modules))
	for i, m := range g.Modules {
		filtered := m
		filtered.Declarations = resolveRefs(g, m.Declarations)
		filtered.Bootstrap = resolveRefs(g, m.Bootstrap)
		filtered.Imports = resolveRefs(g, m.Imports)
		filtered.Exports = resolveRefs(g, m.Exports)
		filtered.Providers = resolveRefs(g, m.Providers)
		out.Modules[i] = filtered
	}
	return &out
}

func resolveRefs(g *model.Graph, refs []model.Ref) []model.Ref {
	if len(refs) == 0 {
		return nil
	}
	kept := make([]model.Ref, 0, len(refs))
	for _, r := range refs {
		if g.Has(r.Kind, r.Name) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// PrepareComponents attaches side inputs to every component: a sibling
// README (converted, best-effort) and the raw text of a declared external
// template. A declared template that cannot be read aborts component
// preparation; a missing README is merely absent.
func (p *Projector) PrepareComponents(g *model.Graph) error {
	for i := range g.Components {
		c := &g.Components[i]
		dir := filepath.Join(p.sourceRoot, filepath.Dir(c.File))

		if body, ok := p.readSiblingReadme(dir); ok {
			converted, err := p.conv.Convert(body)
			if err != nil {
				slog.Warn("Component README conversion failed, skipping", "component", c.Name, "error", err)
			} else {
				c.Readme = string(converted)
			}
		}

		if c.TemplateURL != "" {
			tplPath := filepath.Join(dir, c.TemplateURL)
			data, err := os.ReadFile(tplPath)
			if err != nil {
				return fmt.Errorf("component %s: read template %s: %w", c.Name, c.TemplateURL, err)
			}
			c.TemplateData = string(data)
		}
	}
	return nil
}

func (p *Projector) readSiblingReadme(dir string) ([]byte, bool) {
	for _, name := range []string{"README.md", "readme.md"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, true
		}
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Component README unreadable, skipping", "path", filepath.Join(dir, name), "error", err)
		}
	}
	return nil, false
}

// EmitPages registers the root and per-entity pages for every non-empty
// variant. An empty variant contributes no pages at all, not an empty page.
// Registration order is the render order: the two global root pages first,
// then section by section.
func (p *Projector) EmitPages(reg *pages.Registry, g *model.Graph) error {
	add := func(d pages.Descriptor) error {
		if err := reg.Add(d); err != nil {
			return fmt.Errorf("register page: %w", err)
		}
		return nil
	}

	if err := add(pages.Descriptor{Name: "index", Context: "index", Depth: 1, Kind: pages.KindRoot}); err != nil {
		return err
	}
	if err := add(pages.Descriptor{Name: "overview", Context: "overview", Depth: 1, Kind: pages.KindRoot, Entity: g}); err != nil {
		return err
	}

	if len(g.Modules) > 0 {
		if err := add(pages.Descriptor{Name: "modules", Context: "modules", Depth: 1, Kind: pages.KindRoot, Entity: g.Modules}); err != nil {
			return err
		}
		for _, m := range g.Modules {
			if err := add(pages.Descriptor{Name: m.Name, Context: "module", Path: "modules", Depth: 2, Kind: pages.KindInternal, Entity: m}); err != nil {
				return err
			}
		}
	}
	for _, c := range g.Components {
		if err := add(pages.Descriptor{Name: c.Name, Context: "component", Path: "components", Depth: 2, Kind: pages.KindInternal, Entity: c}); err != nil {
			return err
		}
	}
	for _, d := range g.Directives {
		if err := add(pages.Descriptor{Name: d.Name, Context: "directive", Path: "directives", Depth: 2, Kind: pages.KindInternal, Entity: d}); err != nil {
			return err
		}
	}
	for _, s := range g.Injectables {
		if err := add(pages.Descriptor{Name: s.Name, Context: "injectable", Path: "injectables", Depth: 2, Kind: pages.KindInternal, Entity: s}); err != nil {
			return err
		}
	}
	for _, pi := range g.Pipes {
		if err := add(pages.Descriptor{Name: pi.Name, Context: "pipe", Path: "pipes", Depth: 2, Kind: pages.KindInternal, Entity: pi}); err != nil {
			return err
		}
	}
	for _, c := range g.Classes {
		if err := add(pages.Descriptor{Name: c.Name, Context: "class", Path: "classes", Depth: 2, Kind: pages.KindInternal, Entity: c}); err != nil {
			return err
		}
	}
	for _, i := range g.Interfaces {
		if err := add(pages.Descriptor{Name: i.Name, Context: "interface", Path: "interfaces", Depth: 2, Kind: pages.KindInternal, Entity: i}); err != nil {
			return err
		}
	}
	if len(g.Routes) > 0 {
		if err := add(pages.Descriptor{Name: "routes", Context: "routes", Depth: 1, Kind: pages.KindRoot, Entity: g.Routes}); err != nil {
			return err
		}
	}
	if len(g.Miscellaneous) > 0 {
		if err := add(pages.Descriptor{Name: "miscellaneous", Context: "miscellaneous", Depth: 1, Kind: pages.KindRoot, Entity: g.Miscellaneous}); err != nil {
			return err
		}
	}
	return nil
}
