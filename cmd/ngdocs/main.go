package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ngdocs/internal/build"
	"git.home.luguber.info/inful/ngdocs/internal/config"
	"git.home.luguber.info/inful/ngdocs/internal/coverage"
	"git.home.luguber.info/inful/ngdocs/internal/daemon"
	"git.home.luguber.info/inful/ngdocs/internal/depgraph"
	"git.home.luguber.info/inful/ngdocs/internal/extract"
	"git.home.luguber.info/inful/ngdocs/internal/history"
	"git.home.luguber.info/inful/ngdocs/internal/includes"
	"git.home.luguber.info/inful/ngdocs/internal/markdown"
	"git.home.luguber.info/inful/ngdocs/internal/metrics"
	"git.home.luguber.info/inful/ngdocs/internal/notify"
	"git.home.luguber.info/inful/ngdocs/internal/project"
	"git.home.luguber.info/inful/ngdocs/internal/server"
	"git.home.luguber.info/inful/ngdocs/internal/theme"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"ngdocs.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Override the output directory"`
		Watch  bool   `short:"w" help:"Watch the source tree and rebuild on change"`
		Serve  bool   `short:"s" help:"Serve the generated site locally"`
		Port   int    `short:"p" help:"Port for the local server"`
	} `cmd:"" help:"Build the documentation site"`

	Coverage struct {
		Threshold int `short:"t" help:"Fail when overall coverage is below this percentage" default:"0"`
	} `cmd:"" help:"Compute documentation coverage without building the site"`

	History struct {
		Limit int `short:"n" help:"Number of records to show" default:"20"`
	} `cmd:"" help:"Show recent build cycles"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	switch kctx.Command() {
	case "build":
		if err := runBuild(cfg); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "coverage":
		if err := runCoverage(cfg, CLI.Coverage.Threshold); err != nil {
			slog.Error("Coverage check failed", "error", err)
			os.Exit(1)
		}
	case "history":
		if err := runHistory(cfg, CLI.History.Limit); err != nil {
			slog.Error("History failed", "error", err)
			os.Exit(1)
		}
	}
}

// applyOverrides folds build command flags into the loaded configuration.
func applyOverrides(cfg *config.Config) {
	if CLI.Build.Output != "" {
		cfg.Output.Directory = CLI.Build.Output
	}
	if CLI.Build.Watch {
		cfg.Watch.Enabled = true
	}
	if CLI.Build.Serve {
		cfg.Serve.Enabled = true
	}
	if CLI.Build.Port != 0 {
		cfg.Serve.Port = CLI.Build.Port
	}
}

func runBuild(cfg *config.Config) error {
	applyOverrides(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := metrics.NewRecorder()

	pipeline, cleanup, err := newPipeline(cfg, recorder)
	if err != nil {
		return err
	}
	defer cleanup()

	// The server starts at most once per process, and only after the first
	// build has produced output. Rebuilds update files underneath it.
	var srv *server.Server
	startServer := func() {
		if !cfg.Serve.Enabled || srv != nil {
			return
		}
		var metricsHandler http.Handler
		if cfg.Serve.Metrics {
			metricsHandler = recorder.Handler()
		}
		srv = server.New(server.Options{
			Root:    cfg.Output.Directory,
			Port:    cfg.Serve.Port,
			Metrics: metricsHandler,
		})
		if err := srv.Start(ctx); err != nil {
			slog.Error("Failed to start documentation server", "error", err)
			srv = nil
		}
	}
	defer func() {
		if srv != nil {
			_ = srv.Stop(context.Background())
		}
	}()

	if cfg.Watch.Enabled {
		coordinator := daemon.NewCoordinator(cfg, func(ctx context.Context, kind build.Kind, changed []string) error {
			_, err := pipeline.Run(ctx, kind, changed)
			return err
		}, recorder)
		coordinator.OnReady = startServer
		return coordinator.Run(ctx)
	}

	if _, err := pipeline.Run(ctx, build.KindFull, nil); err != nil {
		return err
	}
	if cfg.Serve.Enabled {
		startServer()
		slog.Info("Serving until interrupted, press Ctrl-C to stop")
		<-ctx.Done()
	}
	return nil
}

// newPipeline wires the build pipeline and its optional collaborators. The
// returned cleanup closes whatever was opened.
func newPipeline(cfg *config.Config, recorder *metrics.Recorder) (*build.Pipeline, func(), error) {
	conv := markdown.NewConverter()
	engine, err := theme.NewEngine(theme.GlobalContext{Title: cfg.Title, Theme: cfg.Theme.Name})
	if err != nil {
		return nil, nil, err
	}

	deps := build.Deps{
		Config:    cfg,
		Extractor: extract.NewGraphExportLoader(cfg.Source.Graph),
		Projector: project.NewProjector(conv, cfg.Source.Dir),
		Engine:    engine,
		Importer:  includes.NewImporter(conv),
		Grapher:   depgraph.NewRenderer(cfg.Output.Directory),
		Recorder:  recorder,
	}

	var closers []func()
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
		deps.Store = store
		closers = append(closers, func() { _ = store.Close() })
	}
	if cfg.Notify.Enabled {
		publisher, err := notify.NewPublisher(cfg.Notify.URL, cfg.Notify.Subject)
		if err != nil {
			// Build output matters more than the event stream.
			slog.Warn("Build event publisher unavailable", "error", err)
		} else {
			deps.Notifier = publisher
			closers = append(closers, func() { publisher.Close() })
		}
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return build.NewPipeline(deps), cleanup, nil
}

// runCoverage scores documentation without writing the site.
func runCoverage(cfg *config.Config, threshold int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loader := extract.NewGraphExportLoader(cfg.Source.Graph)
	g, err := loader.Extract(ctx, nil, extract.Options{SourceDir: cfg.Source.Dir})
	if err != nil {
		return err
	}
	projector := project.NewProjector(markdown.NewConverter(), cfg.Source.Dir)
	report := coverage.Compute(projector.FilterGraph(g))

	for _, r := range report.Records {
		fmt.Printf("%-12s %-40s %3d%% (%d/%d) %s\n",
			r.EntityKind, r.Name, r.Percent, r.Documented, r.Total, r.Status)
	}
	fmt.Printf("\nOverall: %d%% (%s) across %d entities\n", report.Percent, report.Status, report.Count)

	if report.Percent < threshold {
		return fmt.Errorf("coverage %d%% below threshold %d%%", report.Percent, threshold)
	}
	return nil
}

// runHistory prints the most recent build cycles.
func runHistory(cfg *config.Config, limit int) error {
	if cfg.History.Path == "" {
		return fmt.Errorf("history.path is not configured")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No build cycles recorded yet")
		return nil
	}
	for _, e := range entries {
		commit := e.Commit
		if commit == "" {
			commit = "-"
		} else if len(commit) > 8 {
			commit = commit[:8]
		}
		fmt.Printf("%s  %-5s %-7s commit=%s pages=%-4d files=%-4d %s\n",
			e.Started.Format("2006-01-02 15:04:05"), e.Kind, e.Status, commit, e.Pages, e.Files, e.Duration)
	}
	return nil
}
