// Package watcher keeps a directory in sync with the document index.
// File creation and modification trigger indexing; removal deletes
// the corresponding document.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corvid-labs/grounder/internal/core/ports/driving"
	"github.com/corvid-labs/grounder/internal/logger"
)

// debounceDelay coalesces the write bursts editors produce while
// saving a file.
const debounceDelay = 500 * time.Millisecond

// Watcher mirrors one directory into the index.
type Watcher struct {
	indexer   driving.Indexer
	owner     string
	supported map[string]bool

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher indexing on behalf of owner. Only files whose
// extension appears in extensions are handled.
func New(indexer driving.Indexer, owner string, extensions []string) *Watcher {
	supported := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		supported[strings.ToLower(ext)] = true
	}
	return &Watcher{
		indexer:   indexer,
		owner:     owner,
		supported: supported,
		pending:   make(map[string]*time.Timer),
	}
}

// Watch blocks, mirroring dir until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("Watching %s for owner %s", dir, w.owner)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !w.supported[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		w.scheduleIndex(ctx, event.Name)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.cancelPending(event.Name)
		filename := filepath.Base(event.Name)
		if err := w.indexer.DeleteDocument(ctx, w.owner, filename); err != nil {
			logger.Warn("Delete %s failed: %v", filename, err)
		} else {
			logger.Info("Deleted %s", filename)
		}
	}
}

// scheduleIndex defers indexing briefly so a burst of writes to the
// same file results in one indexing call.
func (w *Watcher) scheduleIndex(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.indexFile(ctx, path)
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) indexFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// The file may already be gone again.
		logger.Debug("Read %s failed: %v", path, err)
		return
	}

	filename := filepath.Base(path)
	result, err := w.indexer.IndexDocument(ctx, w.owner, filename, data)
	if err != nil {
		logger.Warn("Index %s failed: %v", filename, err)
		return
	}
	logger.Info("%s: %s", filename, result.Status)
}
