// Package build runs the documentation pipeline: it projects the extracted
// entity graph into pages, renders them in strict order while feeding the
// search index, computes documentation coverage and writes the site.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/ngdocs/internal/config"
	"git.home.luguber.info/inful/ngdocs/internal/coverage"
	"git.home.luguber.info/inful/ngdocs/internal/depgraph"
	"git.home.luguber.info/inful/ngdocs/internal/extract"
	"git.home.luguber.info/inful/ngdocs/internal/gitinfo"
	"git.home.luguber.info/inful/ngdocs/internal/history"
	"git.home.luguber.info/inful/ngdocs/internal/includes"
	"git.home.luguber.info/inful/ngdocs/internal/metrics"
	"git.home.luguber.info/inful/ngdocs/internal/model"
	"git.home.luguber.info/inful/ngdocs/internal/notify"
	"git.home.luguber.info/inful/ngdocs/internal/pages"
	"git.home.luguber.info/inful/ngdocs/internal/project"
	"git.home.luguber.info/inful/ngdocs/internal/search"
	"git.home.luguber.info/inful/ngdocs/internal/theme"
)

// Kind distinguishes a wholesale rebuild from a narrowed one.
type Kind string

const (
	KindFull  Kind = "full"
	KindMicro Kind = "micro"
)

// Summary is the record of one completed cycle.
type Summary struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"kind"`
	Status   string        `json:"status"`
	Commit   string        `json:"commit,omitempty"`
	Pages    int           `json:"pages"`
	Files    int           `json:"files"`
	Duration time.Duration `json:"duration"`
	Started  time.Time     `json:"started"`
}

// renderer is the slice of the template engine the render loop needs.
type renderer interface {
	Render(pages.Descriptor) ([]byte, error)
	RenderAdditional(pages.AdditionalPage) ([]byte, error)
}

// pageIndex is the per-cycle search index fed by the render loop.
type pageIndex interface {
	Add(meta search.PageMeta, rawMarkup []byte, finalURL string) error
	Docs() int
	Flush() error
	Close() error
}

// Pipeline owns the long-lived collaborators and the current global entity
// set. One pipeline exists per process; the rebuild coordinator serializes
// calls to Run.
type Pipeline struct {
	cfg       *config.Config
	extractor extract.Extractor
	projector *project.Projector
	engine    renderer
	importer  *includes.Importer
	grapher   *depgraph.Renderer
	newIndex  func(outputRoot string) (pageIndex, error)

	// Optional collaborators; any may be nil.
	recorder *metrics.Recorder
	store    *history.Store
	notifier *notify.Publisher

	// graph is the current global entity set. It is replaced wholesale on
	// full cycles and merged per file on micro cycles, and is read-only
	// once a cycle starts consuming it.
	graph *model.Graph
}

// Deps bundles the pipeline's collaborators.
type Deps struct {
	Config    *config.Config
	Extractor extract.Extractor
	Projector *project.Projector
	Engine    *theme.Engine
	Importer  *includes.Importer
	Grapher   *depgraph.Renderer
	Recorder  *metrics.Recorder
	Store     *history.Store
	Notifier  *notify.Publisher
}

// NewPipeline wires the pipeline. All required collaborators are constructed
// once at process start and reused across cycles; only per-cycle state (the
// registries, the search index) is created fresh inside Run.
func NewPipeline(d Deps) *Pipeline {
	return &Pipeline{
		cfg:       d.Config,
		extractor: d.Extractor,
		projector: d.Projector,
		engine:    d.Engine,
		importer:  d.Importer,
		grapher:   d.Grapher,
		recorder:  d.Recorder,
		store:     d.Store,
		notifier:  d.Notifier,
		newIndex: func(outputRoot string) (pageIndex, error) {
			return search.NewIndex(outputRoot)
		},
	}
}

// TrackedFiles returns the source files of the current entity set.
func (p *Pipeline) TrackedFiles() []string {
	if p.graph == nil {
		return nil
	}
	return p.graph.Files()
}

// cycleState is the mutable state of one cycle. It is recreated for every
// cycle: the registries are rebuilt from scratch, never patched.
type cycleState struct {
	kind      Kind
	changed   []string
	projected *model.Graph
	registry  *pages.Registry
	report    *coverage.Report
	index     pageIndex
	rendered  int
	timings   map[string]time.Duration
	warnings  []*StageError
}

// Run executes one cycle. For KindMicro, changed lists exactly the files to
// re-extract; the fresh entities supersede the previous ones per file. The
// returned summary is persisted and published when those collaborators are
// configured, regardless of outcome.
func (p *Pipeline) Run(ctx context.Context, kind Kind, changed []string) (*Summary, error) {
	started := time.Now()
	sum := &Summary{
		ID:      uuid.NewString(),
		Kind:    kind,
		Started: started,
	}
	if info, err := gitinfo.Head(p.cfg.Source.Dir); err == nil {
		sum.Commit = info.Commit
	}

	slog.Info("Build cycle starting", "id", sum.ID, "kind", kind, "changed", len(changed))

	st := &cycleState{
		kind:     kind,
		changed:  changed,
		registry: pages.NewRegistry(),
		timings:  make(map[string]time.Duration),
	}

	err := p.runStages(ctx, st, []namedStage{
		{"extract", p.stageExtract},
		{"project", p.stageProject},
		{"pages", p.stagePages},
		{"coverage", p.stageCoverage},
		{"includes", p.stageIncludes},
		{"render", p.stageRender},
		{"flush_search", p.stageFlushSearch},
		{"assets", p.stageAssets},
		{"graphs", p.stageGraphs},
	})

	sum.Duration = time.Since(started)
	sum.Pages = st.rendered
	if p.graph != nil {
		sum.Files = len(p.graph.Files())
	}
	if err != nil {
		sum.Status = "failed"
		// Abort path: release the index without committing, so failed
		// cycles in watch mode do not pile up open indexes.
		if st.index != nil {
			if cerr := st.index.Close(); cerr != nil {
				slog.Warn("Search index release failed", "error", cerr)
			}
		}
	} else {
		sum.Status = "success"
	}

	p.finishCycle(ctx, sum)

	if err != nil {
		return sum, err
	}
	slog.Info("Build cycle finished",
		"id", sum.ID,
		"elapsed", sum.Duration,
		"pages", sum.Pages,
		"theme", p.cfg.Theme.Name,
		"output", p.cfg.Output.Directory)
	return sum, nil
}

// finishCycle records the summary with the optional collaborators.
func (p *Pipeline) finishCycle(ctx context.Context, sum *Summary) {
	if p.recorder != nil {
		p.recorder.ObserveBuild(string(sum.Kind), sum.Status, sum.Duration)
	}
	if p.store != nil {
		err := p.store.Append(ctx, history.Entry{
			ID:       sum.ID,
			Kind:     string(sum.Kind),
			Status:   sum.Status,
			Commit:   sum.Commit,
			Pages:    sum.Pages,
			Files:    sum.Files,
			Duration: sum.Duration,
			Started:  sum.Started,
		})
		if err != nil {
			slog.Warn("Build history write failed", "error", err)
		}
	}
	if p.notifier != nil {
		if err := p.notifier.Publish(sum); err != nil {
			slog.Warn("Build event publish failed", "error", err)
		}
	}
}

// stageExtract refreshes the global entity set. Full cycles replace it
// wholesale; micro cycles re-extract only the changed files and merge by
// file identity.
func (p *Pipeline) stageExtract(ctx context.Context, st *cycleState) error {
	opts := extract.Options{SourceDir: p.cfg.Source.Dir}
	switch st.kind {
	case KindMicro:
		if p.graph == nil {
			return newFatalStageError("extract", errors.New("micro cycle before any full cycle"))
		}
		partial, err := p.extractor.Extract(ctx, st.changed, opts)
		if err != nil {
			return newFatalStageError("extract", err)
		}
		p.graph = p.graph.MergeFiles(partial, st.changed)
	default:
		g, err := p.extractor.Extract(ctx, nil, opts)
		if err != nil {
			return newFatalStageError("extract", err)
		}
		p.graph = g
	}
	return nil
}

// stageProject filters cross-references and attaches component side inputs.
func (p *Pipeline) stageProject(ctx context.Context, st *cycleState) error {
	st.projected = p.projector.FilterGraph(p.graph)
	if err := p.projector.PrepareComponents(st.projected); err != nil {
		// A declared external template that cannot be read is missing
		// required input.
		return newFatalStageError("project", err)
	}
	return nil
}

// stagePages populates the registry from the projected entity set.
func (p *Pipeline) stagePages(ctx context.Context, st *cycleState) error {
	return p.projector.EmitPages(st.registry, st.projected)
}

// stageCoverage scores documentation and appends the coverage report page.
func (p *Pipeline) stageCoverage(ctx context.Context, st *cycleState) error {
	st.report = coverage.Compute(st.projected)
	slog.Info("Documentation coverage computed",
		"entities", st.report.Count,
		"percent", st.report.Percent,
		"status", st.report.Status)
	return st.registry.Add(pages.Descriptor{
		Name:    "coverage",
		Context: "coverage",
		Depth:   1,
		Kind:    pages.KindRoot,
		Entity:  st.report,
	})
}

// stageIncludes imports the additional documentation manifest. A missing
// manifest skips the step; the build proceeds without additional pages.
func (p *Pipeline) stageIncludes(ctx context.Context, st *cycleState) error {
	if p.cfg.Includes.Manifest == "" {
		return nil
	}
	if err := p.importer.Import(p.cfg.Includes.Manifest, st.registry); err != nil {
		return newWarnStageError("includes", err)
	}
	return nil
}

// stageFlushSearch persists the index artifact. Flush trouble is logged and
// the cycle continues; the pages themselves are already on disk.
func (p *Pipeline) stageFlushSearch(ctx context.Context, st *cycleState) error {
	if st.index == nil {
		return nil
	}
	if err := st.index.Flush(); err != nil {
		return newWarnStageError("flush_search", err)
	}
	slog.Info("Search index flushed", "pages", st.index.Docs())
	return nil
}

// stageAssets copies the configured assets folder into the output root. An
// absent folder is missing optional input.
func (p *Pipeline) stageAssets(ctx context.Context, st *cycleState) error {
	if p.cfg.Assets.Dir == "" {
		return nil
	}
	if err := copyTree(p.cfg.Assets.Dir, p.cfg.Output.Directory); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newWarnStageError("assets", fmt.Errorf("assets folder %s absent", p.cfg.Assets.Dir))
		}
		return newWarnStageError("assets", err)
	}
	return nil
}

// stageGraphs renders dependency graphs. Failures are logged, never fatal.
func (p *Pipeline) stageGraphs(ctx context.Context, st *cycleState) error {
	if p.cfg.Graphs.Disabled || p.grapher == nil {
		return nil
	}
	if err := p.grapher.RenderProject(st.projected.Modules); err != nil {
		return newWarnStageError("graphs", fmt.Errorf("project graph: %w", err))
	}
	for _, m := range st.projected.Modules {
		if err := p.grapher.RenderModule(m); err != nil {
			return newWarnStageError("graphs", fmt.Errorf("module %s graph: %w", m.Name, err))
		}
	}
	return nil
}
