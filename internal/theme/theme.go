// Package theme renders page descriptors into HTML markup. Templates are
// selected by the descriptor's render context; the default theme ships
// embedded in the binary.
package theme

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"git.home.luguber.info/inful/ngdocs/internal/pages"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// GlobalContext is the per-project data every template can reach.
type GlobalContext struct {
	Title string
	Theme string
}

// RenderData is the root object handed to a template.
type RenderData struct {
	Global GlobalContext
	Page   pages.Descriptor
	// Body carries pre-converted markup for additional pages.
	Body string
}

// Engine is the template engine collaborator. Constructed once at process
// start and reused across rebuild cycles.
type Engine struct {
	global GlobalContext
	tpls   *template.Template
}

// NewEngine parses the embedded theme templates.
func NewEngine(global GlobalContext) (*Engine, error) {
	tpls, err := template.New("theme").ParseFS(builtin, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse theme templates: %w", err)
	}
	return &Engine{global: global, tpls: tpls}, nil
}

// templateFor maps render contexts onto template names. Class-like entity
// pages share one generic template.
func templateFor(context string) string {
	switch context {
	case "index", "overview", "modules", "module", "component",
		"routes", "miscellaneous", "coverage", "additional-page":
		return context
	case "directive", "injectable", "pipe", "class", "interface":
		return "entity"
	default:
		return ""
	}
}

// Render produces the markup for one page. A render failure is fatal to the
// current build cycle.
func (e *Engine) Render(d pages.Descriptor) ([]byte, error) {
	return e.render(RenderData{Global: e.global, Page: d})
}

// RenderAdditional produces the markup for an imported content page.
func (e *Engine) RenderAdditional(a pages.AdditionalPage) ([]byte, error) {
	return e.render(RenderData{Global: e.global, Page: a.Descriptor, Body: string(a.Body)})
}

func (e *Engine) render(data RenderData) ([]byte, error) {
	name := templateFor(data.Page.Context)
	if name == "" {
		return nil, fmt.Errorf("page %s: unknown render context %q", data.Page.Name, data.Page.Context)
	}
	var buf bytes.Buffer
	if err := e.tpls.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render page %s (%s): %w", data.Page.Name, data.Page.Context, err)
	}
	return buf.Bytes(), nil
}
