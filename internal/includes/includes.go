// Package includes imports an externally declared content tree (a manifest
// of titled Markdown files, optionally nested one level) as additional
// documentation pages.
package includes

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/ngdocs/internal/markdown"
	"git.home.luguber.info/inful/ngdocs/internal/pages"
)

// BasePath is the fixed output sub-directory for imported pages.
const BasePath = "additional-documentation"

// Entry is one manifest item. Children nest exactly one level deep.
type Entry struct {
	Title    string  `yaml:"title"`
	File     string  `yaml:"file"`
	Children []Entry `yaml:"children,omitempty"`
}

// Importer walks a manifest and registers each referenced file as an
// additional page. Files resolve relative to the manifest location.
type Importer struct {
	conv *markdown.Converter
}

// NewImporter returns an importer using the given converter.
func NewImporter(conv *markdown.Converter) *Importer {
	return &Importer{conv: conv}
}

// Import reads the manifest and registers its entries in manifest order:
// each parent, including all of its children, completes before the next
// sibling begins. A single file that fails to load or convert is logged and
// skipped; a missing manifest fails the import step itself (the caller
// decides to proceed without additional pages).
func (im *Importer) Import(manifestPath string, reg *pages.Registry) error {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", manifestPath, err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse manifest %s: %w", manifestPath, err)
	}

	baseDir := filepath.Dir(manifestPath)
	for _, parent := range entries {
		parentSlug := Slug(parent.Title)
		im.importEntry(reg, baseDir, parent, BasePath, parentSlug, 1)
		for _, child := range parent.Children {
			im.importEntry(reg, baseDir, child, path.Join(BasePath, parentSlug), Slug(child.Title), 2)
		}
	}
	return nil
}

// importEntry loads, converts and registers one manifest entry. Failure is
// contained to the entry.
func (im *Importer) importEntry(reg *pages.Registry, baseDir string, e Entry, outPath, filename string, depth int) {
	body, err := im.conv.ConvertFile(filepath.Join(baseDir, e.File))
	if err != nil {
		slog.Warn("Additional page skipped", "title", e.Title, "file", e.File, "error", err)
		return
	}
	page := pages.AdditionalPage{
		Descriptor: pages.Descriptor{
			Name:    e.Title,
			Context: "additional-page",
			Path:    outPath,
			Depth:   depth,
			Kind:    pages.KindRoot,
		},
		Filename: filename,
		Body:     body,
	}
	if depth == 2 {
		page.Kind = pages.KindInternal
	}
	if err := reg.AddAdditional(page); err != nil {
		slog.Warn("Additional page skipped", "title", e.Title, "error", err)
	}
}

// Slug normalizes a display title into a file name: diacritics folded,
// lowercased, spaces removed.
func Slug(title string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)
	return strings.ReplaceAll(folded, " ", "")
}
