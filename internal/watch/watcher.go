// Package watch ingests equipment files dropped into a directory.
package watch

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

	"github.com/JonMunkholm/equipviz/internal/core"
)

// DefaultDebounce is how long a file must stay quiet before it is ingested.
const DefaultDebounce = 500 * time.Millisecond

// Ingester is the part of core.Service the watcher needs.
type Ingester interface {
	IngestFile(ctx context.Context, path string) (*core.AggregateSummary, error)
}

// Watcher monitors a drop folder and ingests new or rewritten CSV/XLSX files.
type Watcher struct {
	dir      string
	debounce time.Duration
	ingest   Ingester
	fsw      *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer

	// OnIngest, if set, is called after every ingestion attempt.
	OnIngest func(path string, summary *core.AggregateSummary, err error)
}

// New starts watching dir. The directory must exist.
func New(dir string, debounce time.Duration, ingest Ingester) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch dir: %w", err)
	}

	stat, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("stat watch dir: %w", err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("watch dir %s is not a directory", absDir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(absDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", absDir, err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		dir:      absDir,
		debounce: debounce,
		ingest:   ingest,
		fsw:      fsw,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Dir returns the absolute path being watched.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run handles events until ctx is cancelled. It closes the underlying
// watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	slog.Info("watching drop folder", "dir", w.dir, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !accepts(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "dir", w.dir, "error", err)
		}
	}
}

// schedule (re)arms the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.handle(ctx, path)
	})
}

func (w *Watcher) handle(ctx context.Context, path string) {
	logger := slog.With("path", path)

	summary, err := w.ingest.IngestFile(ctx, path)
	if err != nil {
		logger.Warn("drop folder ingest failed", "error", err, "code", core.MapError(err).Code)
	} else {
		logger.Info("drop folder ingest completed", "units", summary.UnitCount)
	}

	if w.OnIngest != nil {
		w.OnIngest(path, summary, err)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.fsw.Close()
}

// accepts reports whether name looks like a finished table file. Editor
// lock files and hidden files are skipped.
func accepts(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext != ".csv" && ext != ".xlsx" {
		return false
	}
	_, err := core.DetectFormat(base)
	return err == nil
}
