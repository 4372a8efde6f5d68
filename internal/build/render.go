package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/ngdocs/internal/search"
)

// stageRender materializes the registries. Every page goes through the same
// strictly ordered steps: render the markup, submit it to the search index,
// write the output file. No page starts rendering before the previous page
// has been written. A failed index submission is logged and the page is still
// written; a failed render or write aborts the cycle.
func (p *Pipeline) stageRender(ctx context.Context, st *cycleState) error {
	out := p.cfg.Output.Directory
	if p.cfg.Output.Clean && st.kind == KindFull {
		if err := os.RemoveAll(out); err != nil {
			return newFatalStageError("render", fmt.Errorf("clean output directory: %w", err))
		}
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return newFatalStageError("render", fmt.Errorf("create output directory: %w", err))
	}

	idx, err := p.newIndex(out)
	if err != nil {
		return newFatalStageError("render", err)
	}
	st.index = idx

	for _, d := range st.registry.Pages() {
		if err := ctx.Err(); err != nil {
			return newCanceledStageError("render", err)
		}
		markup, err := p.engine.Render(d)
		if err != nil {
			return newFatalStageError("render", err)
		}
		p.indexPage(st, search.PageMeta{Name: d.Name, Context: d.Context}, markup, d.OutputFile())
		if err := p.writePage(st, d.OutputFile(), markup); err != nil {
			return newFatalStageError("render", err)
		}
	}

	for _, a := range st.registry.Additional() {
		if err := ctx.Err(); err != nil {
			return newCanceledStageError("render", err)
		}
		markup, err := p.engine.RenderAdditional(a)
		if err != nil {
			return newFatalStageError("render", err)
		}
		p.indexPage(st, search.PageMeta{Name: a.Name, Context: a.Context}, markup, a.OutputFile())
		if err := p.writePage(st, a.OutputFile(), markup); err != nil {
			return newFatalStageError("render", err)
		}
	}

	slog.Info("Pages rendered", "count", st.rendered)
	return nil
}

// indexPage submits one page to the search index. Index trouble never blocks
// the page from being written.
func (p *Pipeline) indexPage(st *cycleState, meta search.PageMeta, markup []byte, finalURL string) {
	if st.index == nil {
		return
	}
	if err := st.index.Add(meta, markup, finalURL); err != nil {
		slog.Warn("Search indexing failed for page", "page", finalURL, "error", err)
		return
	}
	if p.recorder != nil {
		p.recorder.PageIndexed()
	}
}

// writePage writes one rendered page under the output root.
func (p *Pipeline) writePage(st *cycleState, rel string, markup []byte) error {
	dst := filepath.Join(p.cfg.Output.Directory, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(dst, markup, 0o644); err != nil {
		return fmt.Errorf("write page %s: %w", rel, err)
	}
	st.rendered++
	if p.recorder != nil {
		p.recorder.PageRendered()
	}
	return nil
}

// copyTree copies src recursively into dst, preserving the relative layout.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
