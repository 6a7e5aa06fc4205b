package sqlite

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetHash(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "a.txt", "some text", "hash-1"))

	hash, err := store.GetHash(ctx, "alice", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", hash)
}

func TestGetHash_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetHash(context.Background(), "alice", "missing.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSave_Upserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "a.txt", "v1", "hash-1"))
	require.NoError(t, store.Save(ctx, "alice", "a.txt", "v2", "hash-2"))

	hash, err := store.GetHash(ctx, "alice", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", hash)
}

func TestInvalidateHash(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "a.txt", "text", "hash-1"))
	require.NoError(t, store.InvalidateHash(ctx, "alice", "a.txt"))

	_, err := store.GetHash(ctx, "alice", "a.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The text must still serve keyword scans after invalidation.
	hits, err := store.ScanKeyword(ctx, "alice", "text", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestScanKeyword(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "notes.txt",
		"the project codename is Heliotrope and launch is in autumn", "h1"))
	require.NoError(t, store.Save(ctx, "alice", "other.txt",
		"nothing relevant here", "h2"))

	hits, err := store.ScanKeyword(ctx, "alice", "heliotrope", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "notes.txt", hits[0].Filename)
	assert.Contains(t, hits[0].Snippet, "Heliotrope")
}

func TestScanKeyword_SnippetWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	text := strings.Repeat("a", 1000) + " needle " + strings.Repeat("b", 1000)
	require.NoError(t, store.Save(ctx, "alice", "big.txt", text, "h1"))

	hits, err := store.ScanKeyword(ctx, "alice", "needle", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Snippet, "needle")
	assert.LessOrEqual(t, len(hits[0].Snippet), 2*snippetRadius+len(" needle "))
}

func TestScanKeyword_LiteralWildcards(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "a.txt", "growth was 45% this year", "h1"))
	require.NoError(t, store.Save(ctx, "alice", "b.txt", "no percentages at all", "h2"))

	hits, err := store.ScanKeyword(ctx, "alice", "45%", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.txt", hits[0].Filename)

	// A bare wildcard matches only texts with a literal percent sign.
	hits, err = store.ScanKeyword(ctx, "alice", "%", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.txt", hits[0].Filename)
}

func TestScanKeyword_OwnerIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "a.txt", "shared keyword", "h1"))

	hits, err := store.ScanKeyword(ctx, "bob", "keyword", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestScanKeyword_TabularFlag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "budget.csv",
		"| Name | Amount |\n| --- | --- |\n| Rent | 1200 |", "h1"))

	hits, err := store.ScanKeyword(ctx, "alice", "rent", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.True(t, hits[0].IsTabular)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "a.txt", "text", "h1"))
	require.NoError(t, store.Delete(ctx, "alice", "a.txt"))

	_, err := store.GetHash(ctx, "alice", "a.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "a.txt", "text a", "h1"))
	require.NoError(t, store.Save(ctx, "alice", "b.txt", "text b", "h2"))
	require.NoError(t, store.Save(ctx, "bob", "c.txt", "text c", "h3"))

	require.NoError(t, store.DeleteAll(ctx, "alice"))

	_, err := store.GetHash(ctx, "alice", "a.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	hash, err := store.GetHash(ctx, "bob", "c.txt")
	require.NoError(t, err)
	assert.Equal(t, "h3", hash)
}
