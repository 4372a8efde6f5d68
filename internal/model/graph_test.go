package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_Has(t *testing.T) {
	g := &Graph{
		Components: []Component{{Declarable: Declarable{Name: "AppComponent", File: "app.component.ts"}}},
		Modules:    []Module{{Name: "AppModule", File: "app.module.ts"}},
	}

	assert.True(t, g.Has(KindComponent, "AppComponent"))
	assert.True(t, g.Has(KindModule, "AppModule"))
	assert.False(t, g.Has(KindComponent, "MissingComponent"))
	assert.False(t, g.Has(KindDirective, "AppComponent"), "name match must respect kind")
	assert.False(t, g.Has(KindRoute, "anything"), "route nodes are not addressable by name")
}

func TestGraph_Files(t *testing.T) {
	g := &Graph{
		Modules:    []Module{{Name: "AppModule", File: "src/app.module.ts"}},
		Components: []Component{{Declarable: Declarable{Name: "AppComponent", File: "src/app.component.ts"}}},
		Classes:    []Class{{Declarable: Declarable{Name: "Helper", File: "src/app.component.ts"}}},
	}

	files := g.Files()
	assert.Equal(t, []string{"src/app.component.ts", "src/app.module.ts"}, files)
}

func TestGraph_MergeFiles_SupersedesByFile(t *testing.T) {
	base := &Graph{
		Components: []Component{
			{Declarable: Declarable{Name: "OldName", File: "src/a.ts", Description: "stale"}},
			{Declarable: Declarable{Name: "Keep", File: "src/b.ts"}},
		},
		Classes: []Class{{Declarable: Declarable{Name: "Gone", File: "src/a.ts"}}},
	}
	partial := &Graph{
		Components: []Component{{Declarable: Declarable{Name: "NewName", File: "src/a.ts", Description: "fresh"}}},
	}

	merged := base.MergeFiles(partial, []string{"src/a.ts"})

	require.Len(t, merged.Components, 2)
	assert.True(t, merged.Has(KindComponent, "NewName"))
	assert.True(t, merged.Has(KindComponent, "Keep"))
	assert.False(t, merged.Has(KindComponent, "OldName"), "entities of a re-extracted file must be superseded")
	assert.False(t, merged.Has(KindClass, "Gone"), "all entity kinds of the touched file are superseded")

	// Original graph is untouched.
	assert.True(t, base.Has(KindComponent, "OldName"))
}

func TestGraph_MergeFiles_RoutesCarryOver(t *testing.T) {
	base := &Graph{Routes: []RouteNode{{Path: ""}}}
	merged := base.MergeFiles(&Graph{}, []string{"src/a.ts"})
	assert.Len(t, merged.Routes, 1, "route tree carries over when the partial graph has none")

	merged = base.MergeFiles(&Graph{Routes: []RouteNode{{Path: "admin"}, {Path: "home"}}}, nil)
	assert.Len(t, merged.Routes, 2, "a partial graph with routes replaces the tree")
}

func TestGraph_IsEmpty(t *testing.T) {
	assert.True(t, (&Graph{}).IsEmpty())
	assert.False(t, (&Graph{Pipes: []Pipe{{Declarable: Declarable{Name: "DatePipe"}}}}).IsEmpty())
}
