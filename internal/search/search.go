// Package search maintains the full-text index of rendered pages. A fresh
// index is built for every cycle and persisted under the output root.
package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"golang.org/x/net/html"
)

// batchSize is how many pages accumulate before a batch is committed.
const batchSize = 100

// PageMeta is the descriptor metadata stored alongside the page text.
type PageMeta struct {
	Name    string
	Context string
}

// document is the shape stored in bleve.
type document struct {
	Title   string `json:"title"`
	Context string `json:"context"`
	URL     string `json:"url"`
	Body    string `json:"body"`
}

// Index wraps a bleve index for one build cycle.
type Index struct {
	idx     bleve.Index
	batch   *bleve.Batch
	pending int
	docs    int
	closed  bool
}

// NewIndex creates a fresh on-disk index at <outputRoot>/search, replacing
// any index left by the previous cycle.
func NewIndex(outputRoot string) (*Index, error) {
	dir := filepath.Join(outputRoot, "search")
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove old search index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	idx, err := bleve.New(dir, bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	return &Index{idx: idx, batch: idx.NewBatch()}, nil
}

// Add submits one rendered page to the index. The markup is reduced to
// plain text before indexing.
func (x *Index) Add(meta PageMeta, rawMarkup []byte, finalURL string) error {
	doc := document{
		Title:   meta.Name,
		Context: meta.Context,
		URL:     finalURL,
		Body:    ExtractText(rawMarkup),
	}
	if err := x.batch.Index(finalURL, doc); err != nil {
		return fmt.Errorf("index page %s: %w", finalURL, err)
	}
	x.pending++
	x.docs++
	if x.pending >= batchSize {
		if err := x.idx.Batch(x.batch); err != nil {
			return fmt.Errorf("commit index batch: %w", err)
		}
		x.batch = x.idx.NewBatch()
		x.pending = 0
	}
	return nil
}

// Docs returns how many pages have been submitted this cycle.
func (x *Index) Docs() int { return x.docs }

// Flush commits the remaining batch and closes the index, leaving the
// persisted artifact under the output root. The index is released even when
// the final commit fails.
func (x *Index) Flush() error {
	if x.closed {
		return nil
	}
	var commitErr error
	if x.pending > 0 {
		if err := x.idx.Batch(x.batch); err != nil {
			commitErr = fmt.Errorf("commit final index batch: %w", err)
		}
		x.pending = 0
	}
	x.closed = true
	if err := x.idx.Close(); err != nil {
		if commitErr != nil {
			return commitErr
		}
		return fmt.Errorf("close search index: %w", err)
	}
	return commitErr
}

// Close releases the index without committing pending work. Used on the
// abort path of a build cycle; safe to call after Flush.
func (x *Index) Close() error {
	if x.closed {
		return nil
	}
	x.closed = true
	if err := x.idx.Close(); err != nil {
		return fmt.Errorf("close search index: %w", err)
	}
	return nil
}

// ExtractText reduces HTML markup to whitespace-normalized plain text.
// Script and style bodies are dropped.
func ExtractText(markup []byte) string {
	tok := html.NewTokenizer(strings.NewReader(string(markup)))
	var (
		sb   strings.Builder
		skip int
	)
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := tok.TagName()
			if n := string(name); n == "script" || n == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			if n := string(name); (n == "script" || n == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(tok.Text())
				sb.WriteByte(' ')
			}
		}
	}
}
