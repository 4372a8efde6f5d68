package search

import (
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	markup := []byte(`<html><head><style>body { color: red }</style></head>
<body><h1>Title</h1><p>Some   body <b>text</b>.</p>
<script>var hidden = true;</script></body></html>`)

	assert.Equal(t, "Title Some body text .", ExtractText(markup))
}

func TestIndex_AddAndSearch(t *testing.T) {
	root := t.TempDir()
	idx, err := NewIndex(root)
	require.NoError(t, err)

	require.NoError(t, idx.Add(PageMeta{Name: "AppComponent", Context: "component"},
		[]byte("<p>selector app-root renders the shell</p>"), "components/AppComponent.html"))
	require.NoError(t, idx.Add(PageMeta{Name: "DataService", Context: "injectable"},
		[]byte("<p>fetches records from the backend</p>"), "injectables/DataService.html"))
	assert.Equal(t, 2, idx.Docs())
	require.NoError(t, idx.Flush())

	// The flushed artifact is a complete, reopenable index.
	reopened, err := bleve.Open(filepath.Join(root, "search"))
	require.NoError(t, err)
	defer reopened.Close()

	res, err := reopened.Search(bleve.NewSearchRequest(bleve.NewMatchQuery("backend")))
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	assert.Equal(t, "injectables/DataService.html", res.Hits[0].ID)
}

func TestNewIndex_ReplacesPreviousCycle(t *testing.T) {
	root := t.TempDir()

	idx, err := NewIndex(root)
	require.NoError(t, err)
	require.NoError(t, idx.Add(PageMeta{Name: "old"}, []byte("<p>stale</p>"), "old.html"))
	require.NoError(t, idx.Flush())

	idx, err = NewIndex(root)
	require.NoError(t, err)
	require.NoError(t, idx.Flush())

	reopened, err := bleve.Open(filepath.Join(root, "search"))
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.DocCount()
	require.NoError(t, err)
	assert.Zero(t, count, "the index is rebuilt from scratch every cycle")
}
