package services

import (
	"context"
	"strings"
	"sync"

	"github.com/corvid-labs/grounder/internal/adapters/driven/store/memory"
	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
)

// fakeShadow is an in-memory ShadowStore for service tests.
type fakeShadow struct {
	mu          sync.Mutex
	texts       map[string]string // owner\x00filename -> text
	hashes      map[string]string
	tabular     map[string]bool
	invalidated []string
	saveErr     error
	scanErr     error
}

var _ driven.ShadowStore = (*fakeShadow)(nil)

func newFakeShadow() *fakeShadow {
	return &fakeShadow{
		texts:   make(map[string]string),
		hashes:  make(map[string]string),
		tabular: make(map[string]bool),
	}
}

func shadowKey(owner, filename string) string {
	return owner + "\x00" + filename
}

func (f *fakeShadow) Save(_ context.Context, owner, filename, text, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	key := shadowKey(owner, filename)
	f.texts[key] = text
	f.hashes[key] = hash
	return nil
}

func (f *fakeShadow) GetHash(_ context.Context, owner, filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.hashes[shadowKey(owner, filename)]
	if !ok {
		return "", domain.ErrNotFound
	}
	return hash, nil
}

func (f *fakeShadow) InvalidateHash(_ context.Context, owner, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := shadowKey(owner, filename)
	delete(f.hashes, key)
	f.invalidated = append(f.invalidated, key)
	return nil
}

func (f *fakeShadow) ScanKeyword(
	_ context.Context, owner, query string, limit int,
) ([]driven.KeywordHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return nil, f.scanErr
	}

	needle := strings.ToLower(query)
	var hits []driven.KeywordHit
	for key, text := range f.texts {
		owner2, filename, _ := strings.Cut(key, "\x00")
		if owner2 != owner {
			continue
		}
		idx := strings.Index(strings.ToLower(text), needle)
		if idx < 0 {
			continue
		}
		start, end := idx-120, idx+len(needle)+120
		if start < 0 {
			start = 0
		}
		if end > len(text) {
			end = len(text)
		}
		hits = append(hits, driven.KeywordHit{
			Filename:  filename,
			Snippet:   text[start:end],
			IsTabular: f.tabular[key],
		})
		if limit > 0 && len(hits) >= limit {
			break
		}
	}
	return hits, nil
}

func (f *fakeShadow) Delete(_ context.Context, owner, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := shadowKey(owner, filename)
	delete(f.texts, key)
	delete(f.hashes, key)
	delete(f.tabular, key)
	return nil
}

func (f *fakeShadow) DeleteAll(_ context.Context, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := owner + "\x00"
	for key := range f.texts {
		if strings.HasPrefix(key, prefix) {
			delete(f.texts, key)
			delete(f.hashes, key)
			delete(f.tabular, key)
		}
	}
	return nil
}

func (f *fakeShadow) Close() error { return nil }

// chunkFailStore wraps the memory store with a failing chunk write,
// for exercising the inconsistent-state recovery path.
type chunkFailStore struct {
	*memory.Store
	putChunksErr error
}

func (s *chunkFailStore) PutChunks(
	ctx context.Context, owner, filename string, chunks []domain.Chunk,
) error {
	if s.putChunksErr != nil {
		return s.putChunksErr
	}
	return s.Store.PutChunks(ctx, owner, filename, chunks)
}
