package driving

import (
	"context"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

// Retriever is the read-path boundary. Retrieval is side-effect-free;
// a slow or failed individual signal yields partial results rather
// than an error.
type Retriever interface {
	// RetrieveContext runs the three signal queries, ranks and
	// deduplicates the candidates, and assembles a context block that
	// never exceeds budget characters (plus one truncation marker).
	RetrieveContext(ctx context.Context, owner, query string, budget int, mode domain.AssembleMode) (*domain.AssembledContext, error)
}
