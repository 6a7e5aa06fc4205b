// Package weaviate implements the dual-tier document store on a
// Weaviate instance. One class holds full-document bodies, a second
// holds chunk units; both are vectorised server-side so indexing and
// search never handle embeddings directly.
package weaviate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/core/ports/driven"
	"github.com/corvid-labs/grounder/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DualTierStore = (*Store)(nil)

const (
	documentClass = "GrounderDocument"
	chunkClass    = "GrounderChunk"

	// listLimit bounds unpaginated listings.
	listLimit = 1000
)

// Config holds connection settings for the Weaviate instance.
type Config struct {
	Host   string // host:port
	Scheme string // "http" or "https"
	APIKey string // optional Weaviate API key

	// OpenAIKey is forwarded to the text2vec-openai module for
	// server-side vectorisation.
	OpenAIKey string
}

// Store is the Weaviate-backed DualTierStore.
type Store struct {
	client *weaviate.Client
}

// NewStore builds the client. No network traffic happens here;
// callers on the write path should EnsureSchema first, while the read
// path tolerates an unreachable instance by degrading.
func NewStore(cfg Config) (*Store, error) {
	wcfg := weaviate.Config{
		Host:   cfg.Host,
		Scheme: cfg.Scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}
	if cfg.OpenAIKey != "" {
		wcfg.Headers = map[string]string{"X-OpenAI-Api-Key": cfg.OpenAIKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	return &Store{client: client}, nil
}

// EnsureSchema creates the document and chunk classes when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, class := range []*models.Class{documentClassSchema(), chunkClassSchema()} {
		exists, err := s.client.Schema().ClassExistenceChecker().
			WithClassName(class.Class).Do(ctx)
		if err != nil {
			return unavailable(fmt.Errorf("check class %s: %w", class.Class, err))
		}
		if exists {
			continue
		}

		logger.Debug("Creating Weaviate class %s", class.Class)
		if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
			// Races with a concurrent creator are benign.
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			return unavailable(fmt.Errorf("create class %s: %w", class.Class, err))
		}
	}
	return nil
}

func documentClassSchema() *models.Class {
	return &models.Class{
		Class:       documentClass,
		Description: "Full normalised document bodies, one object per (owner, filename)",
		Vectorizer:  "text2vec-openai",
		ModuleConfig: map[string]interface{}{
			"text2vec-openai": map[string]interface{}{
				"model": "text-embedding-3-small",
				"type":  "text",
			},
		},
		Properties: []*models.Property{
			textProperty("ownerId", "Owning account namespace", true),
			textProperty("filename", "Upload name, unique per owner", true),
			textProperty("fileType", "Source format", true),
			textProperty("content", "Full normalised text", false),
			textProperty("contentHash", "Fingerprint of the normalised text", true),
			boolProperty("isTabular"),
			intProperty("rowCount"),
			{Name: "columnNames", DataType: []string{"text[]"}},
			textProperty("summary", "Short content description", false),
			textProperty("structure", "Shape descriptor", true),
			intProperty("charCount"),
			{Name: "createdAt", DataType: []string{"date"}},
		},
	}
}

func chunkClassSchema() *models.Class {
	return &models.Class{
		Class:       chunkClass,
		Description: "Chunk units for fine-grained semantic lookup",
		Vectorizer:  "text2vec-openai",
		ModuleConfig: map[string]interface{}{
			"text2vec-openai": map[string]interface{}{
				"model": "text-embedding-3-small",
				"type":  "text",
			},
		},
		Properties: []*models.Property{
			textProperty("ownerId", "Owning account namespace", true),
			textProperty("filename", "Parent document filename", true),
			intProperty("chunkIndex"),
			intProperty("totalChunks"),
			textProperty("content", "Chunk text", false),
			boolProperty("isTabular"),
			textProperty("summary", "Parent table summary", false),
			textProperty("structure", "Parent shape descriptor", true),
		},
	}
}

func textProperty(name, description string, keywordOnly bool) *models.Property {
	p := &models.Property{
		Name:        name,
		Description: description,
		DataType:    []string{"text"},
	}
	if keywordOnly {
		// Identity fields must not influence the vector.
		p.ModuleConfig = map[string]interface{}{
			"text2vec-openai": map[string]interface{}{"skip": true},
		}
	}
	return p
}

func boolProperty(name string) *models.Property {
	return &models.Property{Name: name, DataType: []string{"boolean"}}
}

func intProperty(name string) *models.Property {
	return &models.Property{Name: name, DataType: []string{"int"}}
}

// documentID derives a stable object ID so re-uploading a filename
// replaces the prior object instead of accumulating versions.
func documentID(owner, filename string) strfmt.UUID {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("grounder/doc/"+owner+"/"+filename))
	return strfmt.UUID(id.String())
}

func chunkID(owner, filename string, index int) strfmt.UUID {
	key := fmt.Sprintf("grounder/chunk/%s/%s/%d", owner, filename, index)
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(key))
	return strfmt.UUID(id.String())
}

// PutFullDocument writes the complete normalised body, superseding any
// prior version for the same (owner, filename).
func (s *Store) PutFullDocument(ctx context.Context, doc *domain.Document) (driven.PutOutcome, error) {
	existing, err := s.GetFullDocument(ctx, doc.OwnerID, doc.Filename)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	if existing != nil && existing.Metadata.ContentHash == doc.Metadata.ContentHash {
		return driven.PutSkipped, nil
	}

	obj := &models.Object{
		Class: documentClass,
		ID:    documentID(doc.OwnerID, doc.Filename),
		Properties: map[string]interface{}{
			"ownerId":     doc.OwnerID,
			"filename":    doc.Filename,
			"fileType":    string(doc.FileType),
			"content":     doc.Content,
			"contentHash": doc.Metadata.ContentHash,
			"isTabular":   doc.Metadata.IsTabular,
			"rowCount":    doc.Metadata.RowCount,
			"columnNames": doc.Metadata.ColumnNames,
			"summary":     doc.Metadata.Summary,
			"structure":   doc.Metadata.Structure,
			"charCount":   doc.Metadata.CharCount,
			"createdAt":   doc.CreatedAt.UTC().Format(time.RFC3339),
		},
	}

	result, err := s.client.Batch().ObjectsBatcher().WithObjects(obj).Do(ctx)
	if err != nil {
		return "", unavailable(fmt.Errorf("put document %s: %w", doc.Filename, err))
	}
	if err := firstBatchError(result); err != nil {
		return "", fmt.Errorf("put document %s: %w", doc.Filename, err)
	}
	return driven.PutWritten, nil
}

// PutChunks replaces the chunk set for (owner, filename): the prior
// set is deleted, then the new batch inserted in one call.
func (s *Store) PutChunks(ctx context.Context, owner, filename string, chunks []domain.Chunk) error {
	if err := s.DeleteChunks(ctx, owner, filename); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(chunks))
	for i, c := range chunks {
		objects[i] = &models.Object{
			Class: chunkClass,
			ID:    chunkID(owner, filename, c.ChunkIndex),
			Properties: map[string]interface{}{
				"ownerId":     owner,
				"filename":    filename,
				"chunkIndex":  c.ChunkIndex,
				"totalChunks": c.TotalChunks,
				"content":     c.Content,
				"isTabular":   c.IsTabular,
				"summary":     c.Summary,
				"structure":   c.Structure,
			},
		}
	}

	result, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return unavailable(fmt.Errorf("put chunks %s: %w", filename, err))
	}
	if err := firstBatchError(result); err != nil {
		// Some objects may have landed before the failure: the chunk
		// set can now span generations.
		return fmt.Errorf("put chunks %s: %w: %v",
			filename, domain.ErrInconsistentChunkState, err)
	}
	return nil
}

// DeleteChunks removes every chunk for (owner, filename).
func (s *Store) DeleteChunks(ctx context.Context, owner, filename string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(chunkClass).
		WithWhere(ownerFileFilter(owner, filename)).
		Do(ctx)
	if err != nil {
		return unavailable(fmt.Errorf("delete chunks %s: %w", filename, err))
	}
	return nil
}

// DeleteDocument removes the full-document record and its chunks.
func (s *Store) DeleteDocument(ctx context.Context, owner, filename string) error {
	if err := s.DeleteChunks(ctx, owner, filename); err != nil {
		return err
	}

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(documentClass).
		WithWhere(ownerFileFilter(owner, filename)).
		Do(ctx)
	if err != nil {
		return unavailable(fmt.Errorf("delete document %s: %w", filename, err))
	}
	return nil
}

// SearchByFilenamePattern finds full documents whose filename contains
// pattern, scoped to owner.
func (s *Store) SearchByFilenamePattern(
	ctx context.Context, owner, pattern string, limit int,
) ([]domain.RetrievalCandidate, error) {
	where := filters.Where().
		WithOperator(filters.And).
		WithOperands([]*filters.WhereBuilder{
			ownerFilter(owner),
			filters.Where().
				WithPath([]string{"filename"}).
				WithOperator(filters.Like).
				WithValueText("*" + pattern + "*"),
		})

	result, err := s.client.GraphQL().Get().
		WithClassName(documentClass).
		WithWhere(where).
		WithFields(documentFields()...).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, unavailable(fmt.Errorf("filename search: %w", err))
	}

	items, err := extractObjects(result, documentClass)
	if err != nil {
		return nil, fmt.Errorf("filename search: %w", err)
	}

	candidates := make([]domain.RetrievalCandidate, 0, len(items))
	for _, item := range items {
		c := documentCandidate(item)
		c.Score = 1.0
		c.Signal = domain.SignalFilename
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// SearchChunks runs nearest-neighbour search over the chunk tier.
func (s *Store) SearchChunks(
	ctx context.Context, owner, query string, limit int,
) ([]domain.RetrievalCandidate, error) {
	result, err := s.client.GraphQL().Get().
		WithClassName(chunkClass).
		WithNearText(s.client.GraphQL().NearTextArgBuilder().
			WithConcepts([]string{query})).
		WithWhere(ownerFilter(owner)).
		WithFields(chunkFields()...).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, unavailable(fmt.Errorf("chunk search: %w", err))
	}

	items, err := extractObjects(result, chunkClass)
	if err != nil {
		return nil, fmt.Errorf("chunk search: %w", err)
	}

	candidates := make([]domain.RetrievalCandidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, chunkCandidate(item))
	}
	return candidates, nil
}

// SearchFullDocuments runs nearest-neighbour search over the
// full-document tier.
func (s *Store) SearchFullDocuments(
	ctx context.Context, owner, query string, limit int,
) ([]domain.RetrievalCandidate, error) {
	result, err := s.client.GraphQL().Get().
		WithClassName(documentClass).
		WithNearText(s.client.GraphQL().NearTextArgBuilder().
			WithConcepts([]string{query})).
		WithWhere(ownerFilter(owner)).
		WithFields(documentFields()...).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, unavailable(fmt.Errorf("document search: %w", err))
	}

	items, err := extractObjects(result, documentClass)
	if err != nil {
		return nil, fmt.Errorf("document search: %w", err)
	}

	candidates := make([]domain.RetrievalCandidate, 0, len(items))
	for _, item := range items {
		c := documentCandidate(item)
		c.Score = additionalCertainty(item)
		c.Signal = domain.SignalSemantic
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// GetFullDocument fetches one full-document record.
func (s *Store) GetFullDocument(ctx context.Context, owner, filename string) (*domain.Document, error) {
	result, err := s.client.GraphQL().Get().
		WithClassName(documentClass).
		WithWhere(ownerFileFilter(owner, filename)).
		WithFields(documentFields()...).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return nil, unavailable(fmt.Errorf("get document %s: %w", filename, err))
	}

	items, err := extractObjects(result, documentClass)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", filename, err)
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return parseDocument(items[0]), nil
}

// ListDocuments returns the owner's indexed documents.
func (s *Store) ListDocuments(ctx context.Context, owner string) ([]domain.DocumentInfo, error) {
	result, err := s.client.GraphQL().Get().
		WithClassName(documentClass).
		WithWhere(ownerFilter(owner)).
		WithFields(documentFields()...).
		WithLimit(listLimit).
		Do(ctx)
	if err != nil {
		return nil, unavailable(fmt.Errorf("list documents: %w", err))
	}

	items, err := extractObjects(result, documentClass)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	infos := make([]domain.DocumentInfo, 0, len(items))
	for _, item := range items {
		doc := parseDocument(item)
		infos = append(infos, domain.DocumentInfo{
			Filename:  doc.Filename,
			FileType:  doc.FileType,
			IsTabular: doc.Metadata.IsTabular,
			RowCount:  doc.Metadata.RowCount,
			Summary:   doc.Metadata.Summary,
			CharCount: doc.Metadata.CharCount,
		})
	}
	return infos, nil
}

// Stats returns per-owner object counts for both tiers.
func (s *Store) Stats(ctx context.Context, owner string) (domain.OwnerStats, error) {
	docs, err := s.countClass(ctx, documentClass, owner)
	if err != nil {
		return domain.OwnerStats{}, err
	}
	chunks, err := s.countClass(ctx, chunkClass, owner)
	if err != nil {
		return domain.OwnerStats{}, err
	}
	return domain.OwnerStats{Documents: docs, Chunks: chunks}, nil
}

func (s *Store) countClass(ctx context.Context, class, owner string) (int, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(class).
		WithWhere(ownerFilter(owner)).
		WithFields(graphql.Field{
			Name:   "meta",
			Fields: []graphql.Field{{Name: "count"}},
		}).
		Do(ctx)
	if err != nil {
		return 0, unavailable(fmt.Errorf("count %s: %w", class, err))
	}
	if len(result.Errors) > 0 {
		return 0, fmt.Errorf("count %s: %s", class, result.Errors[0].Message)
	}

	agg, ok := result.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	rows, ok := agg[class].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

// DeleteAll wipes every record belonging to owner in both tiers.
func (s *Store) DeleteAll(ctx context.Context, owner string) error {
	for _, class := range []string{chunkClass, documentClass} {
		_, err := s.client.Batch().ObjectsBatchDeleter().
			WithClassName(class).
			WithWhere(ownerFilter(owner)).
			Do(ctx)
		if err != nil {
			return unavailable(fmt.Errorf("delete all %s: %w", class, err))
		}
	}
	return nil
}

// Ready reports whether the store is reachable.
func (s *Store) Ready(ctx context.Context) bool {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		logger.Debug("Weaviate readiness check failed: %v", err)
		return false
	}
	return ready
}

func ownerFilter(owner string) *filters.WhereBuilder {
	return filters.Where().
		WithPath([]string{"ownerId"}).
		WithOperator(filters.Equal).
		WithValueText(owner)
}

func ownerFileFilter(owner, filename string) *filters.WhereBuilder {
	return filters.Where().
		WithOperator(filters.And).
		WithOperands([]*filters.WhereBuilder{
			ownerFilter(owner),
			filters.Where().
				WithPath([]string{"filename"}).
				WithOperator(filters.Equal).
				WithValueText(filename),
		})
}

func documentFields() []graphql.Field {
	return []graphql.Field{
		{Name: "ownerId"},
		{Name: "filename"},
		{Name: "fileType"},
		{Name: "content"},
		{Name: "contentHash"},
		{Name: "isTabular"},
		{Name: "rowCount"},
		{Name: "columnNames"},
		{Name: "summary"},
		{Name: "structure"},
		{Name: "charCount"},
		{Name: "createdAt"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
		}},
	}
}

func chunkFields() []graphql.Field {
	return []graphql.Field{
		{Name: "filename"},
		{Name: "chunkIndex"},
		{Name: "totalChunks"},
		{Name: "content"},
		{Name: "isTabular"},
		{Name: "summary"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "certainty"},
		}},
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
