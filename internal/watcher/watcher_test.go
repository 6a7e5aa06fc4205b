package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

// recordingIndexer captures indexing calls for assertions.
type recordingIndexer struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
}

func (r *recordingIndexer) IndexDocument(
	_ context.Context, _, filename string, _ []byte,
) (domain.IndexResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexed = append(r.indexed, filename)
	return domain.IndexResult{Status: domain.IndexStatusIndexed, ChunkCount: 1}, nil
}

func (r *recordingIndexer) DeleteDocument(_ context.Context, _, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, filename)
	return nil
}

func (r *recordingIndexer) ListDocuments(context.Context, string) ([]domain.DocumentInfo, error) {
	return nil, nil
}

func (r *recordingIndexer) ClearOwnerData(context.Context, string) error { return nil }

func (r *recordingIndexer) Stats(context.Context, string) (domain.OwnerStats, error) {
	return domain.OwnerStats{}, nil
}

func (r *recordingIndexer) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.indexed...), append([]string(nil), r.deleted...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatch_IndexesNewFiles(t *testing.T) {
	dir := t.TempDir()
	indexer := &recordingIndexer{}
	w := New(indexer, "alice", []string{".txt"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Watch(ctx, dir)
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("hello"), 0600))

	waitFor(t, 3*time.Second, func() bool {
		indexed, _ := indexer.snapshot()
		return len(indexed) > 0
	})

	indexed, _ := indexer.snapshot()
	assert.Contains(t, indexed, "new.txt")

	cancel()
	<-done
}

func TestWatch_IgnoresUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	indexer := &recordingIndexer{}
	w := New(indexer, "alice", []string{".txt"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx, dir) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{1, 2, 3}, 0600))

	time.Sleep(debounceDelay + 300*time.Millisecond)
	indexed, _ := indexer.snapshot()
	assert.Empty(t, indexed)
}

func TestWatch_DeletesRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doomed.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0600))

	indexer := &recordingIndexer{}
	w := New(indexer, "alice", []string{".txt"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Watch(ctx, dir) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.Remove(path))

	waitFor(t, 3*time.Second, func() bool {
		_, deleted := indexer.snapshot()
		return len(deleted) > 0
	})

	_, deleted := indexer.snapshot()
	assert.Contains(t, deleted, "doomed.txt")
}

func TestWatch_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	w := New(&recordingIndexer{}, "alice", []string{".txt"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Watch(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}
