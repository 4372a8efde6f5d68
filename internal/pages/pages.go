// Package pages holds the page registries a build cycle renders from.
//
// Both registries are append-only for the lifetime of one cycle and are
// rebuilt from scratch on every cycle, never patched in place. Registration
// order is the render order.
package pages

import (
	"fmt"
	"path"
)

// PageKind distinguishes section index pages from per-entity pages.
type PageKind string

const (
	KindRoot     PageKind = "root"
	KindInternal PageKind = "internal"
)

// Descriptor is one renderable unit of output.
type Descriptor struct {
	// Name becomes the output file name (without extension) and must be
	// unique within (Path, Depth); a collision would overwrite output.
	Name string
	// Context selects the template used to render the page.
	Context string
	// Path is an optional output sub-directory, e.g. "modules".
	Path string
	// Depth is 1 for root/section pages and 2 for per-entity pages.
	Depth int
	Kind  PageKind
	// Entity is the attached payload handed to the template engine.
	Entity any
}

// AdditionalPage is an externally imported content page. Filename (not Name)
// decides the output file; Body is the already converted markup.
type AdditionalPage struct {
	Descriptor
	Filename string
	Body     []byte
}

// OutputFile returns the page's output location relative to the output root.
func (d Descriptor) OutputFile() string {
	if d.Path == "" {
		return d.Name + ".html"
	}
	return path.Join(d.Path, d.Name+".html")
}

// OutputFile for additional pages uses the normalized filename.
func (a AdditionalPage) OutputFile() string {
	return path.Join(a.Path, a.Filename+".html")
}

// Registry is the ordered page list for one build cycle.
type Registry struct {
	pages      []Descriptor
	additional []AdditionalPage
	seen       map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

func collisionKey(p string, depth int, name string) string {
	return fmt.Sprintf("%s|%d|%s", p, depth, name)
}

// Add appends a page, rejecting a duplicate (path, depth, name) triple.
func (r *Registry) Add(d Descriptor) error {
	key := collisionKey(d.Path, d.Depth, d.Name)
	if _, dup := r.seen[key]; dup {
		return fmt.Errorf("page %q collides at path=%q depth=%d", d.Name, d.Path, d.Depth)
	}
	r.seen[key] = struct{}{}
	r.pages = append(r.pages, d)
	return nil
}

// AddAdditional appends an imported content page. Collisions are checked on
// the filename, which decides the output location for additional pages.
func (r *Registry) AddAdditional(a AdditionalPage) error {
	key := collisionKey(a.Path, a.Depth, a.Filename)
	if _, dup := r.seen[key]; dup {
		return fmt.Errorf("additional page %q collides at path=%q depth=%d", a.Filename, a.Path, a.Depth)
	}
	r.seen[key] = struct{}{}
	r.additional = append(r.additional, a)
	return nil
}

// Pages returns the main page list in registration order.
func (r *Registry) Pages() []Descriptor { return r.pages }

// Additional returns the imported page list in registration order.
func (r *Registry) Additional() []AdditionalPage { return r.additional }

// Len returns the total number of registered pages.
func (r *Registry) Len() int { return len(r.pages) + len(r.additional) }
