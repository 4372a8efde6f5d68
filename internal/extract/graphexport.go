package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/ngdocs/internal/model"
)

// GraphExportLoader reads the dependency graph the language-side analyzer
// exports as JSON (one document per analysis run) and narrows it to the
// requested file set. Re-reading the export on every call is what makes
// watch-mode rebuilds pick up fresh analyzer output.
type GraphExportLoader struct {
	// Path of the JSON graph export.
	Path string
}

// NewGraphExportLoader returns a loader for the given export file.
func NewGraphExportLoader(path string) *GraphExportLoader {
	return &GraphExportLoader{Path: path}
}

// Extract loads the export and keeps only entities whose source file is in
// the given list (nil means everything). An unreadable or malformed export
// yields an empty graph, not an error: partial graphs must not block page
// generation.
func (l *GraphExportLoader) Extract(ctx context.Context, files []string, opts Options) (*model.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		slog.Warn("Graph export unreadable, continuing with empty graph", "path", l.Path, "error", err)
		return &model.Graph{}, nil
	}

	var g model.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		slog.Warn("Graph export malformed, continuing with empty graph", "path", l.Path, "error", err)
		return &model.Graph{}, nil
	}

	if len(files) == 0 {
		return &g, nil
	}
	return narrowToFiles(&g, files), nil
}

// narrowToFiles keeps only entities extracted from the given files. The
// route tree has no file identity and is only retained for full extractions.
func narrowToFiles(g *model.Graph, files []string) *model.Graph {
	want := make(map[string]struct{}, len(files))
	for _, f := range files {
		want[f] = struct{}{}
	}
	in := func(file string) bool {
		_, ok := want[file]
		return ok
	}

	out := &model.Graph{}
	for _, e := range g.Modules {
		if in(e.File) {
			out.Modules = append(out.Modules, e)
		}
	}
	for _, e := range g.Components {
		if in(e.File) {
			out.Components = append(out.Components, e)
		}
	}
	for _, e := range g.Directives {
		if in(e.File) {
			out.Directives = append(out.Directives, e)
		}
	}
	for _, e := range g.Injectables {
		if in(e.File) {
			out.Injectables = append(out.Injectables, e)
		}
	}
	for _, e := range g.Pipes {
		if in(e.File) {
			out.Pipes = append(out.Pipes, e)
		}
	}
	for _, e := range g.Classes {
		if in(e.File) {
			out.Classes = append(out.Classes, e)
		}
	}
	for _, e := range g.Interfaces {
		if in(e.File) {
			out.Interfaces = append(out.Interfaces, e)
		}
	}
	for _, e := range g.Miscellaneous {
		if in(e.File) {
			out.Miscellaneous = append(out.Miscellaneous, e)
		}
	}
	return out
}
