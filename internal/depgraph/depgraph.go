// Package depgraph renders module dependency graphs as DOT files under the
// output root. Graph rendering is a best-effort step: failures are logged by
// the caller and never abort a build cycle.
package depgraph

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"git.home.luguber.info/inful/ngdocs/internal/model"
)

// Renderer writes dependency graphs for the whole project and for single
// modules.
type Renderer struct {
	outputRoot string
}

// NewRenderer returns a renderer targeting the given output root.
func NewRenderer(outputRoot string) *Renderer {
	return &Renderer{outputRoot: outputRoot}
}

// buildModuleGraph models module import/export relations. Only references
// that survived projection appear, so every edge endpoint is a known module.
func buildModuleGraph(modules []model.Module) (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed())
	for _, m := range modules {
		if err := g.AddVertex(m.Name); err != nil {
			return nil, fmt.Errorf("add module %s: %w", m.Name, err)
		}
	}
	for _, m := range modules {
		for _, imp := range m.Imports {
			if imp.Kind != model.KindModule {
				continue
			}
			// Self-loops and duplicates are tolerated.
			_ = g.AddEdge(m.Name, imp.Name)
		}
	}
	return g, nil
}

// RenderProject writes the whole-project module graph to
// <outputRoot>/graph/dependencies.dot.
func (r *Renderer) RenderProject(modules []model.Module) error {
	g, err := buildModuleGraph(modules)
	if err != nil {
		return err
	}
	return writeDOT(g, filepath.Join(r.outputRoot, "graph"), "dependencies.dot")
}

// RenderModule writes the one-module graph (the module plus its imports and
// exports) to <outputRoot>/modules/<name>/dependencies.dot.
func (r *Renderer) RenderModule(m model.Module) error {
	g := graph.New(graph.StringHash, graph.Directed())
	if err := g.AddVertex(m.Name); err != nil {
		return fmt.Errorf("add module %s: %w", m.Name, err)
	}
	for _, ref := range m.Imports {
		if ref.Kind != model.KindModule {
			continue
		}
		_ = g.AddVertex(ref.Name)
		_ = g.AddEdge(m.Name, ref.Name)
	}
	for _, ref := range m.Exports {
		if ref.Kind != model.KindModule {
			continue
		}
		_ = g.AddVertex(ref.Name)
		_ = g.AddEdge(ref.Name, m.Name)
	}
	return writeDOT(g, filepath.Join(r.outputRoot, "modules", m.Name), "dependencies.dot")
}

func writeDOT(g graph.Graph[string, string], dir, name string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create graph directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create graph file: %w", err)
	}
	defer f.Close()
	if err := draw.DOT(g, f); err != nil {
		return fmt.Errorf("write DOT: %w", err)
	}
	return nil
}
