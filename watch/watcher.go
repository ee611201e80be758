// Package watch reports metadata documents that were created or changed
// below a directory, once their content settles.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the watch event channel.
	eventChannelBuffer = 500

	// DefaultDebounce is used when the configured delay is not positive.
	DefaultDebounce = 500 * time.Millisecond
)

// Config configures a Watcher.
type Config struct {
	// Dir is the watched root.
	Dir string
	// Pattern selects files by their slash-separated path relative to Dir.
	Pattern string
	// Debounce is how long changes accumulate before they are reported.
	Debounce time.Duration
	// ExcludeDirs are skipped with everything below them.
	ExcludeDirs []string
	// Skip, if set, drops files it returns true for, such as the
	// documents a conversion just wrote.
	Skip func(absPath string) bool
}

// Event is a created or modified file whose content differs from the last
// report.
type Event struct {
	// Path is relative to the watched root, slash separated.
	Path    string
	AbsPath string
	Content []byte
}

// Watcher watches a directory tree and emits debounced file events.
type Watcher struct {
	config  Config
	root    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	exclude []string

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	events        chan Event
	droppedEvents atomic.Int64
}

// New creates a watcher. Call Start to begin watching.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if !doublestar.ValidatePattern(cfg.Pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", cfg.Pattern)
	}
	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	exclude := make([]string, 0, len(cfg.ExcludeDirs))
	for _, d := range cfg.ExcludeDirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		// Excluding the root would silence everything.
		if abs != root {
			exclude = append(exclude, abs)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		config:  cfg,
		root:    root,
		watcher: fsw,
		logger:  logger,
		exclude: exclude,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		events:  make(chan Event, eventChannelBuffer),
	}, nil
}

// Events returns the channel of watch events. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start adds watches below the root and processes changes until ctx ends
// or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}
	go w.processEvents(ctx)

	w.logger.Info("Watching for metadata changes",
		slog.String("dir", w.root),
		slog.String("pattern", w.config.Pattern),
		slog.Duration("debounce", w.debounce()))
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// DroppedEvents returns the number of events dropped due to channel overflow.
func (w *Watcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

func (w *Watcher) debounce() time.Duration {
	if w.config.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.config.Debounce
}

func (w *Watcher) excluded(dir string) bool {
	base := filepath.Base(dir)
	if strings.HasPrefix(base, ".") && dir != w.root {
		return true
	}
	for _, ex := range w.exclude {
		if dir == ex || strings.HasPrefix(dir, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				slog.String("path", path), slog.String("error", err.Error()))
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excluded(path) {
				if err := w.addWatchesRecursive(path); err != nil {
					w.logger.Warn("Failed to watch new directory",
						slog.String("path", path), slog.String("error", err.Error()))
				}
			}
			return
		}
	}

	if w.excluded(filepath.Dir(path)) {
		return
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return
	}
	if ok, _ := doublestar.Match(w.config.Pattern, filepath.ToSlash(rel)); !ok {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path := range toProcess {
		if ctx.Err() != nil {
			return
		}
		if w.config.Skip != nil && w.config.Skip(path) {
			continue
		}

		// Removed and renamed files have nothing left to convert.
		content, err := os.ReadFile(path)
		if err != nil {
			w.forget(path)
			continue
		}
		// A file caught between truncate and write reads empty.
		if len(content) == 0 || !w.changed(path, content) {
			continue
		}

		rel, _ := filepath.Rel(w.root, path)
		w.sendEvent(Event{Path: filepath.ToSlash(rel), AbsPath: path, Content: content})
	}
}

// changed records the content hash and reports whether it differs from
// the previous one.
func (w *Watcher) changed(path string, content []byte) bool {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	if w.hashes[path] == hash {
		return false
	}
	w.hashes[path] = hash
	return true
}

func (w *Watcher) forget(path string) {
	w.hashMu.Lock()
	delete(w.hashes, path)
	w.hashMu.Unlock()
}

func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Metadata changed", slog.String("path", event.Path))
	default:
		dropped := w.droppedEvents.Add(1)
		w.logger.Warn("Event channel full, dropping event",
			slog.String("path", event.Path),
			slog.Int64("total_dropped", dropped))
	}
}
