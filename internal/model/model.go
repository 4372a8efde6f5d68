package model

// Kind identifies the entity variant an extracted declaration belongs to.
// Names are unique within a variant, not globally.
type Kind string

const (
	KindModule     Kind = "module"
	KindComponent  Kind = "component"
	KindDirective  Kind = "directive"
	KindInjectable Kind = "injectable"
	KindPipe       Kind = "pipe"
	KindClass      Kind = "class"
	KindInterface  Kind = "interface"
	KindRoute      Kind = "route"
	KindMisc       Kind = "misc"
)

// Member is a single documentable unit of an entity (property, method,
// input or output). Only the description participates in coverage scoring.
type Member struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Ref is an unresolved cross-reference held by a module: a (kind, name) pair
// pointing at an entity that may or may not exist in the extracted graph.
type Ref struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

// Declarable carries the fields shared by every class-like entity.
type Declarable struct {
	Name        string   `json:"name"`
	File        string   `json:"file"`
	Description string   `json:"description,omitempty"`
	Properties  []Member `json:"properties,omitempty"`
	Methods     []Member `json:"methods,omitempty"`
}

// Module is a container entity whose member lists reference other entities
// by (kind, name). The lists are raw extractor output; the projector filters
// them against the global sets before any page is emitted.
type Module struct {
	Name         string `json:"name"`
	File         string `json:"file"`
	Description  string `json:"description,omitempty"`
	Declarations []Ref  `json:"declarations,omitempty"`
	Bootstrap    []Ref  `json:"bootstrap,omitempty"`
	Imports      []Ref  `json:"imports,omitempty"`
	Exports      []Ref  `json:"exports,omitempty"`
	Providers    []Ref  `json:"providers,omitempty"`
}

// Component is a renderable UI entity. Readme and TemplateData are side
// inputs attached during component preparation, not extractor output.
type Component struct {
	Declarable
	Selector    string   `json:"selector,omitempty"`
	TemplateURL string   `json:"templateUrl,omitempty"`
	Inputs      []Member `json:"inputs,omitempty"`
	Outputs     []Member `json:"outputs,omitempty"`

	Readme       string `json:"-"`
	TemplateData string `json:"-"`
}

// Directive mirrors Component without a template.
type Directive struct {
	Declarable
	Selector string   `json:"selector,omitempty"`
	Inputs   []Member `json:"inputs,omitempty"`
	Outputs  []Member `json:"outputs,omitempty"`
}

// Injectable is a service-like entity.
type Injectable struct {
	Declarable
}

// Pipe has exactly one documentable unit: its own description.
type Pipe struct {
	Declarable
	PipeName string `json:"pipeName,omitempty"`
}

// Class is a plain class declaration.
type Class struct {
	Declarable
}

// Interface is an interface declaration.
type Interface struct {
	Declarable
}

// RouteNode is one node of the route tree. The tree is rendered as a single
// section page rather than one page per node.
type RouteNode struct {
	Name      string      `json:"name,omitempty"`
	Path      string      `json:"path"`
	Component string      `json:"component,omitempty"`
	Children  []RouteNode `json:"children,omitempty"`
}

// MiscItem is any remaining declaration: variables, functions, enums and
// type aliases.
type MiscItem struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	Subkind     string `json:"subkind,omitempty"`
	Description string `json:"description,omitempty"`
}
