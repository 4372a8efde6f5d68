// Package daemon keeps the documentation site in sync with a source tree.
// The coordinator watches the tree, debounces filesystem events per event
// class and serializes build cycles through a single-flight worker.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/ngdocs/internal/build"
	"git.home.luguber.info/inful/ngdocs/internal/config"
	"git.home.luguber.info/inful/ngdocs/internal/metrics"
)

// RebuildFunc executes one build cycle. The coordinator never calls it
// concurrently with itself.
type RebuildFunc func(ctx context.Context, kind build.Kind, changed []string) error

// request is one coalesced rebuild demand.
type request struct {
	kind  build.Kind
	files []string
}

// Coordinator owns watch mode: filesystem watching, debouncing, rebuild
// scheduling and the periodic full resync.
type Coordinator struct {
	cfg      *config.Config
	rebuild  RebuildFunc
	recorder *metrics.Recorder
	debounce time.Duration

	// OnReady, when set, runs once after the initial build attempt, before
	// watching starts. The server hooks in here so it comes up at most once
	// per process and only with output on disk.
	OnReady func()

	mu           sync.Mutex
	contentTimer *time.Timer
	structTimer  *time.Timer
	// pendingFiles accumulates content-changed files (relative to the
	// source root) until the content debounce window closes.
	pendingFiles map[string]struct{}

	// Single-flight worker state: cycles run one at a time, demands
	// arriving meanwhile queue up. A micro demand merges its file list
	// into an already queued micro; a full and a micro never collapse
	// into one run, they stay separate cycles.
	workMu sync.Mutex
	queue  []request

	requests chan struct{}
}

// NewCoordinator wires a coordinator. The recorder may be nil.
func NewCoordinator(cfg *config.Config, rebuild RebuildFunc, recorder *metrics.Recorder) *Coordinator {
	return &Coordinator{
		cfg:          cfg,
		rebuild:      rebuild,
		recorder:     recorder,
		debounce:     cfg.Debounce(),
		pendingFiles: make(map[string]struct{}),
		requests:     make(chan struct{}, 1),
	}
}

// Run performs the initial full build, then watches the source tree until the
// context is canceled. The first build happens before watching starts, so a
// storm of events during startup cannot produce overlapping cycles.
func (c *Coordinator) Run(ctx context.Context) error {
	absSource, err := filepath.Abs(c.cfg.Source.Dir)
	if err != nil {
		return fmt.Errorf("resolve source dir: %w", err)
	}
	if st, statErr := os.Stat(absSource); statErr != nil || !st.IsDir() {
		return fmt.Errorf("source dir not found or not a directory: %s", absSource)
	}

	if err := c.rebuild(ctx, build.KindFull, nil); err != nil {
		// Watch mode survives a failed initial build; the next change
		// retries.
		slog.Error("Initial build failed", "error", err)
	}
	if c.OnReady != nil {
		c.OnReady()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := addDirsRecursive(watcher, absSource); err != nil {
		return err
	}

	scheduler, err := c.startResync(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	go c.worker(ctx)

	slog.Info("Watching for changes", "dir", absSource, "debounce", c.debounce)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Watch mode stopping")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			c.handleEvent(watcher, absSource, ev)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", werr)
		}
	}
}

// startResync schedules periodic full rebuilds when configured. The resync is
// a safety net for filesystem events the watcher missed.
func (c *Coordinator) startResync(ctx context.Context) (gocron.Scheduler, error) {
	interval := c.cfg.Resync()
	if interval <= 0 {
		return nil, nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create resync scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Info("Periodic resync, scheduling full rebuild")
			c.enqueue(request{kind: build.KindFull})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule resync job: %w", err)
	}
	scheduler.Start()
	slog.Info("Periodic resync enabled", "interval", interval)
	return scheduler, nil
}

// handleEvent classifies one filesystem event and arms the matching debounce
// timer. Content edits and structural changes debounce independently.
func (c *Coordinator) handleEvent(watcher *fsnotify.Watcher, absSource string, ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
			return
		}
	}
	if !c.relevant(ev.Name) {
		return
	}

	rel, err := filepath.Rel(absSource, ev.Name)
	if err != nil {
		rel = ev.Name
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0:
		slog.Debug("Structural change detected", "path", rel, "op", ev.Op.String())
		c.observeWatchEvent("structural")
		c.armStructural()
	case ev.Op&fsnotify.Write != 0:
		slog.Debug("Content change detected", "path", rel)
		c.observeWatchEvent("content")
		c.armContent(rel)
	}
}

// relevant filters events down to the analyzed sources. Declaration and test
// files never contribute entities, so they never trigger a rebuild.
func (c *Coordinator) relevant(path string) bool {
	if shouldIgnoreEvent(path) {
		return false
	}
	ext := c.cfg.Source.Extension
	if !strings.HasSuffix(path, ext) {
		return false
	}
	if strings.HasSuffix(path, ".spec"+ext) || strings.HasSuffix(path, ".d"+ext) {
		return false
	}
	return true
}

// armContent adds the file to the pending set and restarts the content
// debounce window.
func (c *Coordinator) armContent(rel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingFiles[rel] = struct{}{}
	if c.contentTimer != nil {
		c.contentTimer.Stop()
	}
	c.contentTimer = time.AfterFunc(c.debounce, c.fireContent)
}

// armStructural restarts the structural debounce window.
func (c *Coordinator) armStructural() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.structTimer != nil {
		c.structTimer.Stop()
	}
	c.structTimer = time.AfterFunc(c.debounce, c.fireStructural)
}

func (c *Coordinator) fireContent() {
	c.mu.Lock()
	files := make([]string, 0, len(c.pendingFiles))
	for f := range c.pendingFiles {
		files = append(files, f)
	}
	c.pendingFiles = make(map[string]struct{})
	c.mu.Unlock()
	if len(files) == 0 {
		return
	}
	c.enqueue(request{kind: build.KindMicro, files: files})
}

func (c *Coordinator) fireStructural() {
	c.enqueue(request{kind: build.KindFull})
}

// enqueue appends a demand to the work queue and pokes the worker. Redundant
// triggers are deduplicated: a queued full absorbs further fulls, a queued
// micro absorbs further micro file lists. A full never absorbs a micro or
// vice versa; each class keeps its own run.
func (c *Coordinator) enqueue(req request) {
	c.workMu.Lock()
	merged := false
	for i := range c.queue {
		if c.queue[i].kind != req.kind {
			continue
		}
		if req.kind == build.KindMicro {
			c.queue[i].files = mergeFiles(c.queue[i].files, req.files)
		}
		merged = true
		break
	}
	if !merged {
		c.queue = append(c.queue, req)
	}
	c.workMu.Unlock()

	select {
	case c.requests <- struct{}{}:
	default:
	}
}

func mergeFiles(into, more []string) []string {
	seen := make(map[string]struct{}, len(into))
	for _, f := range into {
		seen[f] = struct{}{}
	}
	for _, f := range more {
		if _, dup := seen[f]; !dup {
			into = append(into, f)
		}
	}
	return into
}

// worker drains the queue one cycle at a time.
func (c *Coordinator) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.requests:
		}

		for {
			c.workMu.Lock()
			if len(c.queue) == 0 {
				c.workMu.Unlock()
				break
			}
			req := c.queue[0]
			c.queue = c.queue[1:]
			c.workMu.Unlock()

			if err := c.rebuild(ctx, req.kind, req.files); err != nil {
				slog.Warn("Rebuild failed", "kind", req.kind, "error", err)
			}
		}
	}
}

func (c *Coordinator) observeWatchEvent(class string) {
	if c.recorder != nil {
		c.recorder.WatchEvent(class)
	}
}

// addDirsRecursive registers root and every directory below it.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := w.Add(path); addErr != nil {
				slog.Warn("Watch add failed", "dir", path, "error", addErr)
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports whether a path is editor noise.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
