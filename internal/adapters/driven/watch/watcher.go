// Package watch ingests documents dropped into a staging directory.
// It watches the upload directory with fsnotify and feeds new files to
// the document service.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docuchat-labs/docuchat/internal/core/ports/driving"
	"github.com/docuchat-labs/docuchat/internal/logger"
	"github.com/docuchat-labs/docuchat/internal/normalisers"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// DefaultSettleDelay is how long a file must stay quiet after its last
// write before it is ingested. Editors and copies produce bursts of
// write events; ingesting on the first one would read partial content.
const DefaultSettleDelay = 500 * time.Millisecond

// Event reports one processed upload.
type Event struct {
	// Path is the ingested file.
	Path string

	// Result is the ingestion outcome, nil when Err is set.
	Result *driving.IngestResult

	// Err is the ingestion failure, if any.
	Err error
}

// Watcher ingests files appearing in an upload directory.
type Watcher struct {
	dir     string
	docs    driving.DocumentService
	watcher *fsnotify.Watcher
	events  chan Event
	stop    chan struct{}
	settle  time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher over dir feeding docs. The directory is created
// if missing.
func New(dir string, docs driving.DocumentService) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	return &Watcher{
		dir:     dir,
		docs:    docs,
		watcher: watcher,
		events:  make(chan Event, 16),
		stop:    make(chan struct{}),
		settle:  DefaultSettleDelay,
		pending: make(map[string]*time.Timer),
	}, nil
}

// SetSettleDelay overrides the quiet period before ingestion.
func (w *Watcher) SetSettleDelay(d time.Duration) {
	if d > 0 {
		w.settle = d
	}
}

// Start begins watching. Files already present in the directory are
// ingested first, then new arrivals as they settle. Call Stop to clean
// up resources.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", w.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.schedule(ctx, filepath.Join(w.dir, entry.Name()))
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and cleans up resources.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		// Already stopped
		return
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// Events returns the channel of processed uploads.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// processEvents consumes filesystem events until stopped.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("upload watcher: %v", err)
		}
	}
}

// schedule arms (or re-arms) the settle timer for path. The file is
// ingested once no further events arrive within the settle window.
func (w *Watcher) schedule(ctx context.Context, path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return // temp/hidden files from editors and copy tools
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingest(ctx, path)
	})
}

// ingest reads and stores one settled file.
func (w *Watcher) ingest(ctx context.Context, path string) {
	select {
	case <-w.stop:
		return
	default:
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		w.emit(Event{Path: path, Err: fmt.Errorf("reading upload: %w", err)})
		return
	}

	result, err := w.docs.Ingest(ctx, filepath.Base(path), normalisers.MediaTypeForPath(path), content)
	if err != nil {
		logger.Warn("ingesting %s: %v", path, err)
		w.emit(Event{Path: path, Err: err})
		return
	}

	logger.Info("Ingested %s (%d chunks, %d embedded)", path, result.Chunks, result.Embedded)
	w.emit(Event{Path: path, Result: result})
}

// emit delivers an event without blocking a stopped consumer.
func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.stop:
	}
}
