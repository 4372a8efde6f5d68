package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ngdocs/internal/coverage"
	"git.home.luguber.info/inful/ngdocs/internal/model"
	"git.home.luguber.info/inful/ngdocs/internal/pages"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(GlobalContext{Title: "Demo Docs", Theme: "default"})
	require.NoError(t, err)
	return e
}

func TestRender_Index(t *testing.T) {
	e := newEngine(t)
	out, err := e.Render(pages.Descriptor{Name: "index", Context: "index", Depth: 1})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<title>index - Demo Docs</title>")
	assert.Contains(t, string(out), "Demo Docs")
}

func TestRender_Component(t *testing.T) {
	e := newEngine(t)
	c := model.Component{
		Declarable: model.Declarable{
			Name: "AppComponent", File: "src/app.component.ts", Description: "the shell",
			Methods: []model.Member{{Name: "ngOnInit", Description: "startup hook"}},
		},
		Selector:     "app-root",
		Inputs:       []model.Member{{Name: "mode"}},
		Readme:       "<p>from the readme</p>",
		TemplateData: "<main></main>",
	}

	out, err := e.Render(pages.Descriptor{Name: "AppComponent", Context: "component", Path: "components", Depth: 2, Entity: c})
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "app-root")
	assert.Contains(t, s, "startup hook")
	assert.Contains(t, s, "from the readme")
	assert.Contains(t, s, "&lt;main&gt;</code>", "template source is shown escaped")
}

func TestRender_EntityContextsShareTemplate(t *testing.T) {
	e := newEngine(t)
	for _, ctx := range []string{"directive", "injectable", "pipe", "class", "interface"} {
		out, err := e.Render(pages.Descriptor{
			Name: "Thing", Context: ctx, Depth: 2,
			Entity: model.Class{Declarable: model.Declarable{Name: "Thing", File: "thing.ts"}},
		})
		require.NoError(t, err, ctx)
		assert.Contains(t, string(out), "<h1>Thing</h1>", ctx)
	}
}

func TestRender_Routes(t *testing.T) {
	e := newEngine(t)
	routes := []model.RouteNode{{
		Path: "", Component: "AppComponent",
		Children: []model.RouteNode{{Path: "admin", Component: "AdminComponent"}},
	}}

	out, err := e.Render(pages.Descriptor{Name: "routes", Context: "routes", Depth: 1, Entity: routes})
	require.NoError(t, err)
	assert.Contains(t, string(out), "AdminComponent")
}

func TestRender_Coverage(t *testing.T) {
	e := newEngine(t)
	report := coverage.Compute(&model.Graph{Pipes: []model.Pipe{
		{Declarable: model.Declarable{Name: "DocPipe", File: "doc.pipe.ts", Description: "x"}},
	}})

	out, err := e.Render(pages.Descriptor{Name: "coverage", Context: "coverage", Depth: 1, Entity: report})
	require.NoError(t, err)
	assert.Contains(t, string(out), "100% across 1 entities")
	assert.Contains(t, string(out), "DocPipe")
}

func TestRenderAdditional_BodyPassedThrough(t *testing.T) {
	e := newEngine(t)
	out, err := e.RenderAdditional(pages.AdditionalPage{
		Descriptor: pages.Descriptor{Name: "Getting Started", Context: "additional-page", Path: "additional-documentation", Depth: 1},
		Filename:   "gettingstarted",
		Body:       []byte("<h2>install</h2>"),
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h2>install</h2>", "converted markup is not re-escaped")
}

func TestRender_UnknownContext(t *testing.T) {
	e := newEngine(t)
	_, err := e.Render(pages.Descriptor{Name: "x", Context: "bogus"})
	assert.Error(t, err)
}
