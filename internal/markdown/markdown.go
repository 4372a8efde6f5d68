// Package markdown converts Markdown content into HTML markup for page
// bodies (component READMEs and imported documentation files).
package markdown

import (
	"bytes"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter turns Markdown text into HTML. One converter is constructed at
// process start and reused across rebuild cycles.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter builds a GFM-enabled converter. Raw HTML is passed through
// because imported documentation commonly embeds it.
func NewConverter() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Convert renders a Markdown body to HTML.
func (c *Converter) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// ConvertFile reads and converts a Markdown file in one step.
func (c *Converter) ConvertFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c.Convert(data)
}
