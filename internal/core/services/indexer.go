package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/corvid-labs/grounder/internal/chunker"
	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
	"github.com/corvid-labs/grounder/internal/core/ports/driving"
	"github.com/corvid-labs/grounder/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

var paragraphCounter = regexp.MustCompile(`\n[ \t]*\n+`)

// IndexerService implements the write path: normalise, fingerprint,
// chunk, store. Writes for the same (owner, filename) are serialised;
// distinct files index concurrently.
type IndexerService struct {
	registry driven.NormaliserRegistry
	chunker  *chunker.Chunker
	store    driven.DualTierStore
	shadow   driven.ShadowStore
	locks    *keyedMutex
	now      func() time.Time
}

// NewIndexerService creates a new indexer service.
func NewIndexerService(
	registry driven.NormaliserRegistry,
	c *chunker.Chunker,
	store driven.DualTierStore,
	shadow driven.ShadowStore,
) *IndexerService {
	return &IndexerService{
		registry: registry,
		chunker:  c,
		store:    store,
		shadow:   shadow,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

// IndexDocument normalises, fingerprints, chunks and stores one file.
// Re-upload with identical content is a no-op reported as skipped.
func (s *IndexerService) IndexDocument(
	ctx context.Context, owner, filename string, data []byte,
) (domain.IndexResult, error) {
	logger.Section("Index Document")
	logger.Debug("Owner: %s, file: %s, bytes: %d", owner, filename, len(data))

	if owner == "" || filename == "" {
		return failed("missing owner or filename"),
			fmt.Errorf("index %s: %w", filename, domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return failed("empty file"),
			fmt.Errorf("index %s: %w", filename, domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(owner + "\x00" + filename)
	defer unlock()

	normaliser, err := s.registry.ForFilename(filename)
	if err != nil {
		logger.Warn("No normaliser for %s: %v", filename, err)
		return failed("unsupported format"), fmt.Errorf("index %s: %w", filename, err)
	}

	content, err := normaliser.Normalise(ctx, filename, data)
	if err != nil {
		logger.Warn("Normalisation failed for %s: %v", filename, err)
		return failed("normalisation failed"), fmt.Errorf("normalise %s: %w", filename, err)
	}
	if strings.TrimSpace(content.Text) == "" {
		logger.Debug("No extractable text in %s", filename)
		return failed("no extractable text"),
			fmt.Errorf("index %s: %w: no extractable text", filename, domain.ErrInvalidInput)
	}

	hash := fingerprint(content.Text)
	logger.Debug("Content hash: %s", hash[:12])

	if s.unchanged(ctx, owner, filename, hash) {
		logger.Info("Unchanged content, skipping %s", filename)
		return domain.IndexResult{Status: domain.IndexStatusSkipped, Reason: "unchanged"}, nil
	}

	doc := s.buildDocument(owner, filename, normaliser.FileType(), content, hash)
	pieces := s.chunker.Chunk(content)
	chunks := buildChunks(owner, filename, content, pieces)
	logger.Debug("Chunked into %d units", len(chunks))

	if _, err := s.store.PutFullDocument(ctx, doc); err != nil {
		return s.storeFailure(ctx, owner, filename, fmt.Errorf("put document %s: %w", filename, err))
	}
	if err := s.store.PutChunks(ctx, owner, filename, chunks); err != nil {
		// The store may now hold the new document body with a stale or
		// partial chunk set. Drop the stored hash so the next indexing
		// call rewrites everything.
		if s.shadow != nil {
			if invErr := s.shadow.InvalidateHash(ctx, owner, filename); invErr != nil {
				logger.Warn("Hash invalidation failed for %s: %v", filename, invErr)
			}
		}
		return s.storeFailure(ctx, owner, filename, fmt.Errorf("put chunks %s: %w", filename, err))
	}

	if s.shadow != nil {
		if err := s.shadow.Save(ctx, owner, filename, content.Text, hash); err != nil {
			// Shadow loss only degrades offline search; the index itself
			// is complete.
			logger.Warn("Shadow save failed for %s: %v", filename, err)
		}
	}

	logger.Info("Indexed %s: %d chunks", filename, len(chunks))
	return domain.IndexResult{Status: domain.IndexStatusIndexed, ChunkCount: len(chunks)}, nil
}

// DeleteDocument removes one document from both store tiers and the
// local shadow copy.
func (s *IndexerService) DeleteDocument(ctx context.Context, owner, filename string) error {
	if owner == "" || filename == "" {
		return domain.ErrInvalidInput
	}

	unlock := s.locks.Lock(owner + "\x00" + filename)
	defer unlock()

	logger.Debug("Deleting %s for owner %s", filename, owner)

	if err := s.store.DeleteDocument(ctx, owner, filename); err != nil {
		return fmt.Errorf("delete document %s: %w", filename, err)
	}
	if s.shadow != nil {
		if err := s.shadow.Delete(ctx, owner, filename); err != nil {
			logger.Warn("Shadow delete failed for %s: %v", filename, err)
		}
	}
	return nil
}

// ListDocuments returns the owner's indexed documents.
func (s *IndexerService) ListDocuments(ctx context.Context, owner string) ([]domain.DocumentInfo, error) {
	if owner == "" {
		return nil, domain.ErrInvalidInput
	}
	infos, err := s.store.ListDocuments(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return infos, nil
}

// ClearOwnerData wipes everything the owner has indexed.
func (s *IndexerService) ClearOwnerData(ctx context.Context, owner string) error {
	if owner == "" {
		return domain.ErrInvalidInput
	}

	logger.Section("Clear Owner Data")
	logger.Debug("Owner: %s", owner)

	if err := s.store.DeleteAll(ctx, owner); err != nil {
		return fmt.Errorf("clear store data: %w", err)
	}
	if s.shadow != nil {
		if err := s.shadow.DeleteAll(ctx, owner); err != nil {
			return fmt.Errorf("clear shadow data: %w", err)
		}
	}
	return nil
}

// Stats returns the owner's object counts across both store tiers.
func (s *IndexerService) Stats(ctx context.Context, owner string) (domain.OwnerStats, error) {
	if owner == "" {
		return domain.OwnerStats{}, domain.ErrInvalidInput
	}
	stats, err := s.store.Stats(ctx, owner)
	if err != nil {
		return domain.OwnerStats{}, fmt.Errorf("store stats: %w", err)
	}
	return stats, nil
}

// unchanged reports whether the stored hash matches. Any lookup
// failure defaults to reindexing; a spurious rewrite is idempotent,
// a spurious skip loses data.
func (s *IndexerService) unchanged(ctx context.Context, owner, filename, hash string) bool {
	if s.shadow == nil {
		return false
	}
	stored, err := s.shadow.GetHash(ctx, owner, filename)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Hash lookup failed for %s: %v (reindexing)", filename, err)
		}
		return false
	}
	return stored == hash
}

func (s *IndexerService) buildDocument(
	owner, filename string, fileType domain.FileType,
	content *domain.NormalizedContent, hash string,
) *domain.Document {
	meta := domain.DocumentMetadata{
		ContentHash: hash,
		IsTabular:   content.IsTabular(),
		CharCount:   len(content.Text),
	}
	if content.IsTabular() {
		meta.RowCount = content.Table.RowCount
		meta.ColumnNames = content.Table.ColumnNames
		meta.Summary = content.Table.Summary
		meta.Structure = content.Table.Structure
	} else {
		paragraphs := len(paragraphCounter.Split(content.Text, -1))
		meta.Structure = fmt.Sprintf("text:paragraphs=%d", paragraphs)
	}

	return &domain.Document{
		OwnerID:   owner,
		Filename:  filename,
		FileType:  fileType,
		Content:   content.Text,
		Metadata:  meta,
		CreatedAt: s.now(),
	}
}

func buildChunks(
	owner, filename string, content *domain.NormalizedContent, pieces []string,
) []domain.Chunk {
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			OwnerID:     owner,
			Filename:    filename,
			ChunkIndex:  i,
			TotalChunks: len(pieces),
			Content:     piece,
			IsTabular:   content.IsTabular(),
		}
		if content.IsTabular() {
			chunks[i].Summary = content.Table.Summary
			chunks[i].Structure = content.Table.Structure
		}
	}
	return chunks
}

// storeFailure maps store errors onto index results. An unreachable
// store is reported as skipped so batch callers keep going; anything
// else is a per-file failure.
func (s *IndexerService) storeFailure(
	_ context.Context, _, filename string, err error,
) (domain.IndexResult, error) {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		logger.Warn("Store unreachable while indexing %s", filename)
		return domain.IndexResult{
			Status: domain.IndexStatusSkipped,
			Reason: "store unreachable",
		}, err
	}
	logger.Warn("Indexing %s failed: %v", filename, err)
	return failed("store write failed"), err
}

func failed(reason string) domain.IndexResult {
	return domain.IndexResult{Status: domain.IndexStatusFailed, Reason: reason}
}
