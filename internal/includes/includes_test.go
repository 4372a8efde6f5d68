package includes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ngdocs/internal/markdown"
	"git.home.luguber.info/inful/ngdocs/internal/pages"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "gettingstarted", Slug("Getting Started"))
	assert.Equal(t, "uberuns", Slug("Über uns"))
	assert.Equal(t, "installation", Slug("Installation"))
}

func writeManifest(t *testing.T, dir, manifest string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	path := filepath.Join(dir, "summary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	return path
}

func TestImport_ParentWithChildren(t *testing.T) {
	dir := t.TempDir()
	manifest := `
- title: Getting Started
  file: getting-started.md
  children:
    - title: Install
      file: install.md
    - title: First Steps
      file: first-steps.md
`
	path := writeManifest(t, dir, manifest, map[string]string{
		"getting-started.md": "# Getting started",
		"install.md":         "# Install",
		"first-steps.md":     "# First steps",
	})

	reg := pages.NewRegistry()
	require.NoError(t, NewImporter(markdown.NewConverter()).Import(path, reg))

	got := reg.Additional()
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].Depth)
	assert.Equal(t, "additional-documentation", got[0].Path)
	assert.Equal(t, "gettingstarted", got[0].Filename)

	assert.Equal(t, 2, got[1].Depth)
	assert.Equal(t, "additional-documentation/gettingstarted", got[1].Path)
	assert.Equal(t, "install", got[1].Filename)

	assert.Equal(t, 2, got[2].Depth)
	assert.Equal(t, "additional-documentation/gettingstarted", got[2].Path)
	assert.Equal(t, "firststeps", got[2].Filename)
}

func TestImport_ChildFailureSkipsOnlyThatChild(t *testing.T) {
	dir := t.TempDir()
	manifest := `
- title: Guide
  file: guide.md
  children:
    - title: Broken
      file: does-not-exist.md
    - title: Working
      file: working.md
`
	path := writeManifest(t, dir, manifest, map[string]string{
		"guide.md":   "# Guide",
		"working.md": "# Works",
	})

	reg := pages.NewRegistry()
	require.NoError(t, NewImporter(markdown.NewConverter()).Import(path, reg))

	got := reg.Additional()
	require.Len(t, got, 2, "a load failure skips one entry, not the whole import")
	assert.Equal(t, "guide", got[0].Filename)
	assert.Equal(t, "working", got[1].Filename)
}

func TestImport_OrderIsManifestOrder(t *testing.T) {
	dir := t.TempDir()
	manifest := `
- title: Second Topic
  file: b.md
- title: First Topic
  file: a.md
`
	path := writeManifest(t, dir, manifest, map[string]string{"a.md": "a", "b.md": "b"})

	reg := pages.NewRegistry()
	require.NoError(t, NewImporter(markdown.NewConverter()).Import(path, reg))

	got := reg.Additional()
	require.Len(t, got, 2)
	assert.Equal(t, "secondtopic", got[0].Filename, "manifest order wins, not alphabetical order")
	assert.Equal(t, "firsttopic", got[1].Filename)
}

func TestImport_MissingManifestFailsImportStep(t *testing.T) {
	reg := pages.NewRegistry()
	err := NewImporter(markdown.NewConverter()).Import(filepath.Join(t.TempDir(), "summary.yaml"), reg)
	require.Error(t, err)
	assert.Zero(t, reg.Len())
}
