// Package driving provides interfaces consumed by callers (primary/inbound ports).
package driving

import (
	"context"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

// Indexer is the write-path boundary consumed by the conversational
// agent and the CLI. Per-document failures are isolated: one bad file
// never aborts a batch.
type Indexer interface {
	// IndexDocument normalises, fingerprints, chunks and stores one
	// uploaded file. Re-upload with identical content is a no-op
	// reported as IndexStatusSkipped.
	IndexDocument(ctx context.Context, owner, filename string, data []byte) (domain.IndexResult, error)

	// DeleteDocument removes one document from both store tiers and
	// the local shadow copy.
	DeleteDocument(ctx context.Context, owner, filename string) error

	// ListDocuments returns the owner's indexed documents.
	ListDocuments(ctx context.Context, owner string) ([]domain.DocumentInfo, error)

	// ClearOwnerData wipes everything the owner has indexed.
	ClearOwnerData(ctx context.Context, owner string) error

	// Stats returns the owner's object counts across both store tiers.
	Stats(ctx context.Context, owner string) (domain.OwnerStats, error)
}
