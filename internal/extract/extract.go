// Package extract defines the extractor collaborator: the component that
// turns source files into an entity graph. The analyzer itself runs outside
// this process; the default implementation loads its JSON graph export.
package extract

import (
	"context"

	"git.home.luguber.info/inful/ngdocs/internal/model"
)

// Options narrows an extraction run.
type Options struct {
	// SourceDir is the root of the tracked source tree.
	SourceDir string
}

// Extractor produces an entity graph for the given source files. A nil or
// empty file list means the entire tracked set. Implementations return a
// best-effort partial graph on analyzer trouble instead of failing the
// build; the projector tolerates incomplete graphs by design.
type Extractor interface {
	Extract(ctx context.Context, files []string, opts Options) (*model.Graph, error)
}
