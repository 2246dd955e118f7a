package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/semaphore"
)

// Handler processes one image that landed in the watched directory.
type Handler func(ctx context.Context, path string) error

// WatcherOptions tunes a Watcher. Zero values take the defaults.
type WatcherOptions struct {
	// Debounce is how long a file must stay quiet before it is handled.
	// Cameras and sync clients write in several chunks. Default 500ms.
	Debounce time.Duration
	// Workers bounds concurrent handler calls. Default 2.
	Workers int
	// ProcessExisting handles images already in the directory at start.
	ProcessExisting bool
	Logger          *slog.Logger
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsImage reports whether path looks like an image the detectors accept.
// Hidden files are ignored.
func IsImage(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return imageExts[strings.ToLower(filepath.Ext(base))]
}

// Watcher hands every image created or rewritten in a directory to a
// Handler once the file has settled.
type Watcher struct {
	dir     string
	handle  Handler
	opts    WatcherOptions
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// NewWatcher starts watching dir. Call Run to process events.
func NewWatcher(dir string, handle Handler, opts WatcherOptions) (*Watcher, error) {
	if handle == nil {
		return nil, fmt.Errorf("watcher needs a handler")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		handle:  handle,
		opts:    opts,
		logger:  logger,
		fsw:     fsw,
		sem:     semaphore.NewWeighted(int64(opts.Workers)),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run processes events until ctx is cancelled, then waits for in-flight
// handlers and returns. Handler errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if w.opts.ProcessExisting {
		if err := w.scanExisting(ctx); err != nil {
			w.shutdown()
			return err
		}
	}
	w.logger.Info("watching for scorecards", "dir", w.dir, "workers", w.opts.Workers)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				w.shutdown()
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !IsImage(event.Name) {
				continue
			}
			w.trigger(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.shutdown()
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			w.shutdown()
			return nil
		}
	}
}

func (w *Watcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && IsImage(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		w.mu.Lock()
		w.dispatchLocked(ctx, filepath.Join(w.dir, name))
		w.mu.Unlock()
	}
	return nil
}

// trigger (re)arms the debounce timer for path.
func (w *Watcher) trigger(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.opts.Debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.pending, path)
		w.dispatchLocked(ctx, path)
	})
}

// dispatchLocked starts a handler goroutine. Callers hold w.mu.
func (w *Watcher) dispatchLocked(ctx context.Context, path string) {
	if w.closed {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer w.sem.Release(1)
		w.process(ctx, path)
	}()
}

func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Removed or renamed before it settled.
		w.logger.Debug("skipping vanished file", "path", path, "error", err)
		return
	}
	start := time.Now()
	if err := w.handle(ctx, path); err != nil {
		w.logger.Warn("scorecard processing failed", "path", path, "error", err)
		return
	}
	w.logger.Info("scorecard processed",
		"path", path,
		"size", humanize.Bytes(uint64(info.Size())),
		"duration_ms", time.Since(start).Milliseconds())
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	w.closed = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
