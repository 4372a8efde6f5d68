package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ngdocs/internal/model"
)

const exportFixture = `{
  "modules": [{"name": "AppModule", "file": "src/app.module.ts"}],
  "components": [
    {"name": "AppComponent", "file": "src/app.component.ts"},
    {"name": "NavComponent", "file": "src/nav.component.ts"}
  ],
  "routes": [{"path": "", "component": "AppComponent"}]
}`

func writeExport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dependencies.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_FullSet(t *testing.T) {
	l := NewGraphExportLoader(writeExport(t, exportFixture))

	g, err := l.Extract(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Len(t, g.Modules, 1)
	assert.Len(t, g.Components, 2)
	assert.Len(t, g.Routes, 1)
}

func TestExtract_NarrowedToFiles(t *testing.T) {
	l := NewGraphExportLoader(writeExport(t, exportFixture))

	g, err := l.Extract(context.Background(), []string{"src/nav.component.ts"}, Options{})
	require.NoError(t, err)
	assert.Empty(t, g.Modules)
	require.Len(t, g.Components, 1)
	assert.Equal(t, "NavComponent", g.Components[0].Name)
	assert.Empty(t, g.Routes, "route tree has no file identity and is dropped on narrowed runs")
}

func TestExtract_MissingExportIsBestEffort(t *testing.T) {
	l := NewGraphExportLoader(filepath.Join(t.TempDir(), "missing.json"))

	g, err := l.Extract(context.Background(), nil, Options{})
	require.NoError(t, err, "analyzer trouble must not fail the build")
	assert.True(t, g.IsEmpty())
}

func TestExtract_MalformedExportIsBestEffort(t *testing.T) {
	l := NewGraphExportLoader(writeExport(t, "{not json"))

	g, err := l.Extract(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.True(t, g.IsEmpty())
}

func TestExtract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewGraphExportLoader(writeExport(t, exportFixture))
	_, err := l.Extract(ctx, nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

var _ Extractor = (*GraphExportLoader)(nil)

func TestNarrowKeepsAllKinds(t *testing.T) {
	g := &model.Graph{
		Pipes:         []model.Pipe{{Declarable: model.Declarable{Name: "P", File: "p.ts"}}},
		Miscellaneous: []model.MiscItem{{Name: "helper", File: "p.ts"}},
		Classes:       []model.Class{{Declarable: model.Declarable{Name: "C", File: "other.ts"}}},
	}
	out := narrowToFiles(g, []string{"p.ts"})
	assert.Len(t, out.Pipes, 1)
	assert.Len(t, out.Miscellaneous, 1)
	assert.Empty(t, out.Classes)
}
