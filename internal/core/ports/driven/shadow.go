package driven

import "context"

// ShadowStore keeps a local copy of normalised text and content hashes
// per (owner, filename). It backs two degraded paths: change detection
// when the vector store cannot answer, and the literal keyword scan
// that keeps retrieval usable while the store is unreachable.
type ShadowStore interface {
	// Save upserts the normalised text and hash for (owner, filename).
	Save(ctx context.Context, owner, filename, text, hash string) error

	// GetHash returns the stored content hash.
	// Returns domain.ErrNotFound when the file was never indexed.
	GetHash(ctx context.Context, owner, filename string) (string, error)

	// InvalidateHash clears the stored hash so the next indexing call
	// reindexes unconditionally. Used after a suspected inconsistent
	// chunk state.
	InvalidateHash(ctx context.Context, owner, filename string) error

	// ScanKeyword performs a case-insensitive literal substring scan
	// over the owner's normalised texts, returning a context window
	// around each match.
	ScanKeyword(ctx context.Context, owner, query string, limit int) ([]KeywordHit, error)

	// Delete removes the row for (owner, filename).
	Delete(ctx context.Context, owner, filename string) error

	// DeleteAll removes every row belonging to owner.
	DeleteAll(ctx context.Context, owner string) error

	// Close releases resources.
	Close() error
}

// KeywordHit is one literal match from the shadow scan.
type KeywordHit struct {
	Filename string

	// Snippet is the text window around the match.
	Snippet string

	IsTabular bool
}
