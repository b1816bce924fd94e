// Package watcher keeps the document store in step with a folder on disk.
//
// Create and write events sync the file (ingest or reprocess by source
// path); remove and rename events delete the documents ingested from it.
// Events are debounced per path so an editor's burst of writes results in
// a single sync.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/pathfilter"
)

// DefaultDebounce is the quiet period before a path is synced.
const DefaultDebounce = 300 * time.Millisecond

// Ingester is the part of the ingestion service the watcher drives.
type Ingester interface {
	SyncFile(ctx context.Context, path string) (*domain.Document, error)
	RemoveBySourcePath(ctx context.Context, path string) (int, error)
}

var _ Ingester = (driving.IngestionService)(nil)

// Config configures a Watcher.
type Config struct {
	Root     string
	Include  []string
	Exclude  []string
	Debounce time.Duration
}

type action int

const (
	actionNone action = iota
	actionSync
	actionRemove
)

func (a action) String() string {
	switch a {
	case actionSync:
		return "sync"
	case actionRemove:
		return "remove"
	default:
		return "none"
	}
}

type job struct {
	path string
	act  action
}

// Watcher watches a directory tree and forwards changes to an Ingester.
type Watcher struct {
	root     string
	filter   *pathfilter.Filter
	ingest   Ingester
	log      logger.Logger
	debounce time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]action
	jobs    chan job
}

// New validates cfg and returns a Watcher. Run starts it.
func New(cfg Config, ingest Ingester, log logger.Logger) (*Watcher, error) {
	if ingest == nil {
		return nil, fmt.Errorf("%w: watcher needs an ingester", domain.ErrInvalidConfig)
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", cfg.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}
	filter, err := pathfilter.New(root, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Watcher{
		root:     root,
		filter:   filter,
		ingest:   ingest,
		log:      log.With("component", "watcher", "root", root),
		debounce: cfg.Debounce,
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]action),
		jobs:     make(chan job, 64),
	}, nil
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	dirs, err := w.addTree(fw, w.root)
	if err != nil {
		return err
	}
	w.log.Info("watching", "directories", dirs)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.work(ctx)
	}()
	defer func() {
		w.stopTimers()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fw, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.handleNewDir(ctx, fw, event.Name)
			return
		}
	}
	act := w.classify(event)
	if act == actionNone {
		return
	}
	w.log.Debug("change detected", "path", event.Name, "op", event.Op.String())
	w.schedule(ctx, event.Name, act)
}

// classify maps an event on a file to the action it triggers.
func (w *Watcher) classify(event fsnotify.Event) action {
	if isHidden(w.root, event.Name) || !w.filter.Match(event.Name) {
		return actionNone
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return actionRemove
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return actionSync
	default:
		return actionNone
	}
}

// handleNewDir watches a directory created after Run started and syncs
// the files already inside it.
func (w *Watcher) handleNewDir(ctx context.Context, fw *fsnotify.Watcher, dir string) {
	if isHidden(w.root, dir) || w.filter.SkipDir(dir) {
		return
	}
	if _, err := w.addTree(fw, dir); err != nil {
		w.log.Warn("failed to watch new directory", "path", dir, "error", err)
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if d.Type().IsRegular() && !isHidden(w.root, path) && w.filter.Match(path) {
			w.schedule(ctx, path, actionSync)
		}
		return nil
	})
}

// addTree adds dir and every non-excluded directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.log.Warn("skipping unreadable directory", "path", path, "error", err)
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && (isHidden(w.root, path) || w.filter.SkipDir(path)) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.log.Warn("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return count, nil
}

// schedule (re)starts the debounce timer for path. The latest action wins.
func (w *Watcher) schedule(ctx context.Context, path string, act action) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = act
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.flush(ctx, path) })
}

func (w *Watcher) flush(ctx context.Context, path string) {
	w.mu.Lock()
	act, ok := w.pending[path]
	delete(w.pending, path)
	delete(w.timers, path)
	w.mu.Unlock()
	if !ok {
		return
	}

	select {
	case w.jobs <- job{path: path, act: act}:
	case <-ctx.Done():
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
		delete(w.pending, path)
	}
}

// work runs jobs one at a time so two syncs of the same path never race.
func (w *Watcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-w.jobs:
			_ = w.apply(ctx, j)
		}
	}
}

func (w *Watcher) apply(ctx context.Context, j job) error {
	act := j.act
	if act == actionSync {
		if _, err := os.Stat(j.path); errors.Is(err, fs.ErrNotExist) {
			act = actionRemove
		}
	}

	switch act {
	case actionSync:
		doc, err := w.ingest.SyncFile(ctx, j.path)
		switch {
		case errors.Is(err, domain.ErrUnsupportedType):
			w.log.Debug("skipping unsupported file", "path", j.path)
			return nil
		case err != nil:
			w.log.Warn("sync failed", "path", j.path, "error", err)
			return err
		}
		w.log.Info("document synced", "path", j.path, "document_id", doc.ID, "chunks", doc.ChunkCount)
	case actionRemove:
		n, err := w.ingest.RemoveBySourcePath(ctx, j.path)
		if err != nil {
			w.log.Warn("remove failed", "path", j.path, "error", err)
			return err
		}
		if n > 0 {
			w.log.Info("documents removed", "path", j.path, "count", n)
		}
	}
	return nil
}

// isHidden reports whether any element of path below root starts with a dot.
func isHidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
