// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

// PutOutcome reports what a full-document write actually did.
type PutOutcome string

const (
	// PutWritten means a new document version was stored.
	PutWritten PutOutcome = "written"

	// PutSkipped means the store already held this content.
	PutSkipped PutOutcome = "skipped"
)

// DualTierStore is the single contract over the external vector
// database. One collection holds full-document bodies keyed by
// (owner, filename); a second holds chunk units for fine-grained
// semantic lookup. The concrete database is swappable behind this
// interface.
//
// Connectivity failures are reported as domain.ErrStoreUnavailable so
// callers can degrade to keyword-only search instead of failing the
// whole query.
type DualTierStore interface {
	// PutFullDocument writes the complete normalised body, superseding
	// any prior version for the same (owner, filename).
	PutFullDocument(ctx context.Context, doc *domain.Document) (PutOutcome, error)

	// PutChunks replaces the chunk set for (owner, filename). The old
	// set is deleted before the new batch is inserted; callers never
	// observe a half-written chunk set.
	PutChunks(ctx context.Context, owner, filename string, chunks []domain.Chunk) error

	// DeleteChunks removes every chunk for (owner, filename).
	DeleteChunks(ctx context.Context, owner, filename string) error

	// DeleteDocument removes the full-document record and its chunks.
	DeleteDocument(ctx context.Context, owner, filename string) error

	// SearchByFilenamePattern finds full documents whose filename
	// contains pattern, scoped to owner.
	SearchByFilenamePattern(ctx context.Context, owner, pattern string, limit int) ([]domain.RetrievalCandidate, error)

	// SearchChunks runs nearest-neighbour search over the chunk tier.
	// Scores are normalised similarities in [0,1].
	SearchChunks(ctx context.Context, owner, query string, limit int) ([]domain.RetrievalCandidate, error)

	// SearchFullDocuments runs nearest-neighbour search over the
	// full-document tier, used by full-context assembly.
	SearchFullDocuments(ctx context.Context, owner, query string, limit int) ([]domain.RetrievalCandidate, error)

	// GetFullDocument fetches one full-document record.
	// Returns domain.ErrNotFound for expected absence.
	GetFullDocument(ctx context.Context, owner, filename string) (*domain.Document, error)

	// ListDocuments returns the owner's indexed documents.
	ListDocuments(ctx context.Context, owner string) ([]domain.DocumentInfo, error)

	// Stats returns per-owner object counts for both tiers.
	Stats(ctx context.Context, owner string) (domain.OwnerStats, error)

	// DeleteAll wipes every record belonging to owner in both tiers.
	DeleteAll(ctx context.Context, owner string) error

	// Ready reports whether the store is reachable.
	Ready(ctx context.Context) bool
}
