// Package memory provides an in-memory DualTierStore for testing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DualTierStore = (*Store)(nil)

type docKey struct {
	owner    string
	filename string
}

// Store is an in-memory implementation of driven.DualTierStore.
// Semantic search is approximated with token-overlap scoring, which is
// deterministic and good enough for exercising ranking behaviour.
type Store struct {
	mu        sync.RWMutex
	docs      map[docKey]*domain.Document
	chunks    map[docKey][]domain.Chunk
	available bool
}

// NewStore creates a new in-memory dual-tier store.
func NewStore() *Store {
	return &Store{
		docs:      make(map[docKey]*domain.Document),
		chunks:    make(map[docKey][]domain.Chunk),
		available: true,
	}
}

// SetAvailable toggles simulated reachability. While false, every
// operation returns domain.ErrStoreUnavailable.
func (s *Store) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.available = available
}

func (s *Store) check() error {
	if !s.available {
		return domain.ErrStoreUnavailable
	}
	return nil
}

// PutFullDocument writes the complete normalised body, superseding any
// prior version for the same (owner, filename).
func (s *Store) PutFullDocument(_ context.Context, doc *domain.Document) (driven.PutOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return "", err
	}

	key := docKey{doc.OwnerID, doc.Filename}
	if existing, ok := s.docs[key]; ok &&
		existing.Metadata.ContentHash == doc.Metadata.ContentHash {
		return driven.PutSkipped, nil
	}

	copied := *doc
	s.docs[key] = &copied
	return driven.PutWritten, nil
}

// PutChunks replaces the chunk set for (owner, filename).
func (s *Store) PutChunks(_ context.Context, owner, filename string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	key := docKey{owner, filename}
	s.chunks[key] = append([]domain.Chunk(nil), chunks...)
	return nil
}

// DeleteChunks removes every chunk for (owner, filename).
func (s *Store) DeleteChunks(_ context.Context, owner, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	delete(s.chunks, docKey{owner, filename})
	return nil
}

// DeleteDocument removes the full-document record and its chunks.
func (s *Store) DeleteDocument(_ context.Context, owner, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	key := docKey{owner, filename}
	delete(s.docs, key)
	delete(s.chunks, key)
	return nil
}

// SearchByFilenamePattern finds full documents whose filename contains
// pattern, scoped to owner. Matching is case-insensitive.
func (s *Store) SearchByFilenamePattern(
	_ context.Context, owner, pattern string, limit int,
) ([]domain.RetrievalCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	pattern = strings.ToLower(pattern)
	var results []domain.RetrievalCandidate
	for key, doc := range s.docs {
		if key.owner != owner {
			continue
		}
		if !strings.Contains(strings.ToLower(key.filename), pattern) {
			continue
		}
		results = append(results, domain.RetrievalCandidate{
			Filename:  doc.Filename,
			Content:   doc.Content,
			IsTabular: doc.Metadata.IsTabular,
			Score:     1.0,
			Signal:    domain.SignalFilename,
			Summary:   doc.Metadata.Summary,
		})
	}

	sortByScoreThenName(results)
	return truncate(results, limit), nil
}

// SearchChunks runs token-overlap search over the chunk tier.
func (s *Store) SearchChunks(
	_ context.Context, owner, query string, limit int,
) ([]domain.RetrievalCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	var results []domain.RetrievalCandidate
	for key, chunks := range s.chunks {
		if key.owner != owner {
			continue
		}
		for _, c := range chunks {
			score := overlapScore(query, c.Content)
			if score == 0 {
				continue
			}
			results = append(results, domain.RetrievalCandidate{
				Filename:    c.Filename,
				Content:     c.Content,
				IsTabular:   c.IsTabular,
				Score:       score,
				Signal:      domain.SignalSemantic,
				ChunkIndex:  c.ChunkIndex,
				TotalChunks: c.TotalChunks,
				Summary:     c.Summary,
			})
		}
	}

	sortByScoreThenName(results)
	return truncate(results, limit), nil
}

// SearchFullDocuments runs token-overlap search over the full-document
// tier.
func (s *Store) SearchFullDocuments(
	_ context.Context, owner, query string, limit int,
) ([]domain.RetrievalCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	var results []domain.RetrievalCandidate
	for key, doc := range s.docs {
		if key.owner != owner {
			continue
		}
		score := overlapScore(query, doc.Content)
		if score == 0 {
			continue
		}
		results = append(results, domain.RetrievalCandidate{
			Filename:  doc.Filename,
			Content:   doc.Content,
			IsTabular: doc.Metadata.IsTabular,
			Score:     score,
			Signal:    domain.SignalSemantic,
			Summary:   doc.Metadata.Summary,
		})
	}

	sortByScoreThenName(results)
	return truncate(results, limit), nil
}

// GetFullDocument fetches one full-document record.
func (s *Store) GetFullDocument(_ context.Context, owner, filename string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	doc, ok := s.docs[docKey{owner, filename}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

// ListDocuments returns the owner's indexed documents sorted by name.
func (s *Store) ListDocuments(_ context.Context, owner string) ([]domain.DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	var infos []domain.DocumentInfo
	for key, doc := range s.docs {
		if key.owner != owner {
			continue
		}
		infos = append(infos, domain.DocumentInfo{
			Filename:  doc.Filename,
			FileType:  doc.FileType,
			IsTabular: doc.Metadata.IsTabular,
			RowCount:  doc.Metadata.RowCount,
			Summary:   doc.Metadata.Summary,
			CharCount: doc.Metadata.CharCount,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Filename < infos[j].Filename })
	return infos, nil
}

// Stats returns per-owner object counts for both tiers.
func (s *Store) Stats(_ context.Context, owner string) (domain.OwnerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return domain.OwnerStats{}, err
	}

	var stats domain.OwnerStats
	for key := range s.docs {
		if key.owner == owner {
			stats.Documents++
		}
	}
	for key, chunks := range s.chunks {
		if key.owner == owner {
			stats.Chunks += len(chunks)
		}
	}
	return stats, nil
}

// DeleteAll wipes every record belonging to owner in both tiers.
func (s *Store) DeleteAll(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	for key := range s.docs {
		if key.owner == owner {
			delete(s.docs, key)
		}
	}
	for key := range s.chunks {
		if key.owner == owner {
			delete(s.chunks, key)
		}
	}
	return nil
}

// Ready reports whether the store is reachable.
func (s *Store) Ready(_ context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

// overlapScore is the fraction of query tokens present in the content.
func overlapScore(query, content string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}

	contentLower := strings.ToLower(content)
	matched := 0
	for _, term := range terms {
		if strings.Contains(contentLower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

func sortByScoreThenName(results []domain.RetrievalCandidate) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Filename != results[j].Filename {
			return results[i].Filename < results[j].Filename
		}
		return results[i].ChunkIndex < results[j].ChunkIndex
	})
}

func truncate(results []domain.RetrievalCandidate, limit int) []domain.RetrievalCandidate {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
