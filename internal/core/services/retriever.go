package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
	"github.com/corvid-labs/grounder/internal/core/ports/driving"
	"github.com/corvid-labs/grounder/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

const (
	// chunkScoreFloor drops weak chunk-tier matches.
	chunkScoreFloor = 0.5

	// fullDocScoreFloor is looser because whole-document vectors blur
	// individual topics.
	fullDocScoreFloor = 0.4

	// minPrimaryResults is the threshold below which the keyword scan
	// fills gaps.
	minPrimaryResults = 3

	// defaultBudget bounds the assembled context when the caller
	// passes no budget.
	defaultBudget = 8000

	filenameSearchLimit = 5
	semanticSearchLimit = 10
	keywordSearchLimit  = 5
)

// queryStopwords are tokens too generic to identify a filename.
var queryStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"what": true, "which": true, "with": true, "about": true,
	"from": true, "this": true, "that": true, "these": true,
	"those": true, "file": true, "files": true, "document": true,
	"documents": true, "show": true, "tell": true, "please": true,
	"can": true, "you": true, "how": true, "does": true, "did": true,
	"where": true, "when": true, "who": true, "summarise": true,
	"summarize": true, "summary": true, "all": true, "any": true,
	"list": true, "give": true, "find": true, "search": true,
}

// RetrieverService implements the read path: three retrieval signals
// ranked, deduplicated and packed into a budget-bounded context block.
type RetrieverService struct {
	store  driven.DualTierStore
	shadow driven.ShadowStore
}

// NewRetrieverService creates a new retriever service.
// The shadow store is optional; without it there is no keyword signal
// and no degraded mode.
func NewRetrieverService(store driven.DualTierStore, shadow driven.ShadowStore) *RetrieverService {
	return &RetrieverService{store: store, shadow: shadow}
}

// RetrieveContext runs the signal queries, ranks the candidates and
// assembles a context block that never exceeds budget characters plus
// one truncation marker.
func (s *RetrieverService) RetrieveContext(
	ctx context.Context, owner, query string, budget int, mode domain.AssembleMode,
) (*domain.AssembledContext, error) {
	logger.Section("Context Retrieval")
	logger.Debug("Owner: %s, query: %q, budget: %d, mode: %d", owner, query, budget, mode)

	if owner == "" {
		return nil, fmt.Errorf("retrieve context: %w: missing owner", domain.ErrInvalidInput)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning empty context")
		return &domain.AssembledContext{}, nil
	}
	if budget <= 0 {
		budget = defaultBudget
	}

	candidates, err := s.gatherCandidates(ctx, owner, query, mode)
	if err != nil {
		return nil, err
	}
	logger.Debug("Raw candidates: %d", len(candidates))

	ranked := rankCandidates(candidates)
	logger.Debug("Ranked candidates: %d", len(ranked))

	assembled := assembleContext(ranked, budget, mode)
	logger.Info("Assembled %d items, %d chars, %d omitted",
		len(assembled.Items), assembled.CharCount, assembled.Omitted)

	return assembled, nil
}

// gatherCandidates runs the filename and semantic signals in parallel,
// then decides whether the keyword scan is needed.
//
// An unreachable store is not an error: retrieval degrades to the
// keyword scan over locally held shadow text.
func (s *RetrieverService) gatherCandidates(
	ctx context.Context, owner, query string, mode domain.AssembleMode,
) ([]domain.RetrievalCandidate, error) {
	var filenameResults, semanticResults []domain.RetrievalCandidate
	var filenameErr, semanticErr error

	token := filenameToken(query)
	logger.Debug("Filename token: %q", token)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if token == "" {
			return
		}
		filenameResults, filenameErr = s.store.SearchByFilenamePattern(
			ctx, owner, token, filenameSearchLimit)
	}()

	go func() {
		defer wg.Done()
		semanticResults, semanticErr = s.semanticSearch(ctx, owner, query, mode)
	}()

	wg.Wait()

	if isUnavailable(filenameErr) || isUnavailable(semanticErr) {
		logger.Warn("Store unreachable, degrading to keyword-only search")
		return s.keywordSearch(ctx, owner, query)
	}
	if filenameErr != nil {
		logger.Warn("Filename search failed: %v (continuing)", filenameErr)
	}
	if semanticErr != nil {
		logger.Warn("Semantic search failed: %v (continuing)", semanticErr)
	}
	if filenameErr != nil && semanticErr != nil {
		return nil, fmt.Errorf("retrieve context: filename=%w, semantic=%w",
			filenameErr, semanticErr)
	}

	logger.Debug("Signals: filename=%d, semantic=%d",
		len(filenameResults), len(semanticResults))

	candidates := append(filenameResults, semanticResults...)
	if len(candidates) < minPrimaryResults {
		keyword, err := s.keywordSearch(ctx, owner, query)
		if err != nil {
			logger.Warn("Keyword fallback failed: %v (continuing)", err)
		} else {
			logger.Debug("Keyword fallback: %d hits", len(keyword))
			candidates = append(candidates, keyword...)
		}
	}

	return candidates, nil
}

// semanticSearch picks the store tier by assembly mode: chunk units
// for tight contexts, whole documents for full ones. Results under
// the tier's score floor are dropped.
func (s *RetrieverService) semanticSearch(
	ctx context.Context, owner, query string, mode domain.AssembleMode,
) ([]domain.RetrievalCandidate, error) {
	var results []domain.RetrievalCandidate
	var err error
	floor := chunkScoreFloor

	if mode == domain.ModeFull {
		floor = fullDocScoreFloor
		results, err = s.store.SearchFullDocuments(ctx, owner, query, semanticSearchLimit)
	} else {
		results, err = s.store.SearchChunks(ctx, owner, query, semanticSearchLimit)
	}
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Score >= floor {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// keywordSearch scans locally held shadow text for literal matches.
func (s *RetrieverService) keywordSearch(
	ctx context.Context, owner, query string,
) ([]domain.RetrievalCandidate, error) {
	if s.shadow == nil {
		return nil, nil
	}

	hits, err := s.shadow.ScanKeyword(ctx, owner, query, keywordSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("keyword scan: %w", err)
	}

	candidates := make([]domain.RetrievalCandidate, len(hits))
	for i, hit := range hits {
		candidates[i] = domain.RetrievalCandidate{
			Filename:  hit.Filename,
			Content:   hit.Snippet,
			IsTabular: hit.IsTabular,
			Signal:    domain.SignalKeyword,
		}
	}
	return candidates, nil
}

// filenameToken extracts the most filename-like query token: the
// longest token of at least three characters that is not a stopword.
func filenameToken(query string) string {
	var best string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		token := strings.Trim(field, `.,;:!?"'()[]{}`)
		if len(token) < 3 || queryStopwords[token] {
			continue
		}
		if len(token) > len(best) {
			best = token
		}
	}
	return best
}

func isUnavailable(err error) bool {
	return err != nil && errors.Is(err, domain.ErrStoreUnavailable)
}
