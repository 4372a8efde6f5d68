package model

import "sort"

// Graph is the full extracted entity set for one build cycle. A cycle owns
// its graph immutably: a full rebuild replaces the graph wholesale, a micro
// rebuild produces a new graph via MergeFiles.
type Graph struct {
	Modules       []Module    `json:"modules,omitempty"`
	Components    []Component `json:"components,omitempty"`
	Directives    []Directive `json:"directives,omitempty"`
	Injectables   []Injectable `json:"injectables,omitempty"`
	Pipes         []Pipe      `json:"pipes,omitempty"`
	Classes       []Class     `json:"classes,omitempty"`
	Interfaces    []Interface `json:"interfaces,omitempty"`
	Routes        []RouteNode `json:"routes,omitempty"`
	Miscellaneous []MiscItem  `json:"miscellaneous,omitempty"`
}

// Has reports whether an entity of the given kind and name exists in the
// graph. Route nodes are not addressable by name and always report false.
func (g *Graph) Has(kind Kind, name string) bool {
	switch kind {
	case KindModule:
		for _, e := range g.Modules {
			if e.Name == name {
				return true
			}
		}
	case KindComponent:
		for _, e := range g.Components {
			if e.Name == name {
				return true
			}
		}
	case KindDirective:
		for _, e := range g.Directives {
			if e.Name == name {
				return true
			}
		}
	case KindInjectable:
		for _, e := range g.Injectables {
			if e.Name == name {
				return true
			}
		}
	case KindPipe:
		for _, e := range g.Pipes {
			if e.Name == name {
				return true
			}
		}
	case KindClass:
		for _, e := range g.Classes {
			if e.Name == name {
				return true
			}
		}
	case KindInterface:
		for _, e := range g.Interfaces {
			if e.Name == name {
				return true
			}
		}
	case KindMisc:
		for _, e := range g.Miscellaneous {
			if e.Name == name {
				return true
			}
		}
	}
	return false
}

// Files returns the sorted set of source files that contributed at least one
// entity. The rebuild coordinator uses this as the tracked file set.
func (g *Graph) Files() []string {
	set := map[string]struct{}{}
	for _, e := range g.Modules {
		set[e.File] = struct{}{}
	}
	for _, e := range g.Components {
		set[e.File] = struct{}{}
	}
	for _, e := range g.Directives {
		set[e.File] = struct{}{}
	}
	for _, e := range g.Injectables {
		set[e.File] = struct{}{}
	}
	for _, e := range g.Pipes {
		set[e.File] = struct{}{}
	}
	for _, e := range g.Classes {
		set[e.File] = struct{}{}
	}
	for _, e := range g.Interfaces {
		set[e.File] = struct{}{}
	}
	for _, e := range g.Miscellaneous {
		set[e.File] = struct{}{}
	}
	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// IsEmpty reports whether the graph holds no entities at all.
func (g *Graph) IsEmpty() bool {
	return len(g.Modules) == 0 && len(g.Components) == 0 && len(g.Directives) == 0 &&
		len(g.Injectables) == 0 && len(g.Pipes) == 0 && len(g.Classes) == 0 &&
		len(g.Interfaces) == 0 && len(g.Routes) == 0 && len(g.Miscellaneous) == 0
}

// MergeFiles returns a new graph where every entity previously extracted
// from one of the given files is superseded by the entities of the partial
// graph. Entities from untouched files carry over unchanged. The route tree
// is file-agnostic and is replaced whenever the partial graph carries one.
func (g *Graph) MergeFiles(partial *Graph, files []string) *Graph {
	touched := make(map[string]struct{}, len(files))
	for _, f := range files {
		touched[f] = struct{}{}
	}
	keep := func(file string) bool {
		_, ok := touched[file]
		return !ok
	}

	out := &Graph{}
	for _, e := range g.Modules {
		if keep(e.File) {
			out.Modules = append(out.Modules, e)
		}
	}
	for _, e := range g.Components {
		if keep(e.File) {
			out.Components = append(out.Components, e)
		}
	}
	for _, e := range g.Directives {
		if keep(e.File) {
			out.Directives = append(out.Directives, e)
		}
	}
	for _, e := range g.Injectables {
		if keep(e.File) {
			out.Injectables = append(out.Injectables, e)
		}
	}
	for _, e := range g.Pipes {
		if keep(e.File) {
			out.Pipes = append(out.Pipes, e)
		}
	}
	for _, e := range g.Classes {
		if keep(e.File) {
			out.Classes = append(out.Classes, e)
		}
	}
	for _, e := range g.Interfaces {
		if keep(e.File) {
			out.Interfaces = append(out.Interfaces, e)
		}
	}
	for _, e := range g.Miscellaneous {
		if keep(e.File) {
			out.Miscellaneous = append(out.Miscellaneous, e)
		}
	}

	out.Modules = append(out.Modules, partial.Modules...)
	out.Components = append(out.Components, partial.Components...)
	out.Directives = append(out.Directives, partial.Directives...)
	out.Injectables = append(out.Injectables, partial.Injectables...)
	out.Pipes = append(out.Pipes, partial.Pipes...)
	out.Classes = append(out.Classes, partial.Classes...)
	out.Interfaces = append(out.Interfaces, partial.Interfaces...)
	out.Miscellaneous = append(out.Miscellaneous, partial.Miscellaneous...)

	if len(partial.Routes) > 0 {
		out.Routes = partial.Routes
	} else {
		out.Routes = g.Routes
	}
	return out
}
