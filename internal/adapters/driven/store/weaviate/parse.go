package weaviate

import (
	"errors"
	"fmt"
	"time"

	"github.com/weaviate/weaviate/entities/models"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

// extractObjects unwraps a GraphQL Get response into per-object
// property maps.
func extractObjects(result *models.GraphQLResponse, class string) ([]map[string]interface{}, error) {
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("graphql: %s", result.Errors[0].Message)
	}
	if result.Data == nil {
		return nil, nil
	}

	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	rows, ok := get[class].([]interface{})
	if !ok {
		return nil, nil
	}

	items := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		if item, ok := row.(map[string]interface{}); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// firstBatchError surfaces the first per-object failure in a batch
// write response.
func firstBatchError(responses []models.ObjectsGetResponse) error {
	for _, r := range responses {
		if r.Result == nil || r.Result.Errors == nil {
			continue
		}
		for _, e := range r.Result.Errors.Error {
			if e != nil && e.Message != "" {
				return errors.New(e.Message)
			}
		}
	}
	return nil
}

func parseDocument(item map[string]interface{}) *domain.Document {
	doc := &domain.Document{
		OwnerID:  str(item, "ownerId"),
		Filename: str(item, "filename"),
		FileType: domain.FileType(str(item, "fileType")),
		Content:  str(item, "content"),
		Metadata: domain.DocumentMetadata{
			ContentHash: str(item, "contentHash"),
			IsTabular:   boolean(item, "isTabular"),
			RowCount:    integer(item, "rowCount"),
			ColumnNames: strSlice(item, "columnNames"),
			Summary:     str(item, "summary"),
			Structure:   str(item, "structure"),
			CharCount:   integer(item, "charCount"),
		},
	}
	if created, err := time.Parse(time.RFC3339, str(item, "createdAt")); err == nil {
		doc.CreatedAt = created
	}
	return doc
}

func documentCandidate(item map[string]interface{}) domain.RetrievalCandidate {
	return domain.RetrievalCandidate{
		Filename:  str(item, "filename"),
		Content:   str(item, "content"),
		IsTabular: boolean(item, "isTabular"),
		Summary:   str(item, "summary"),
	}
}

func chunkCandidate(item map[string]interface{}) domain.RetrievalCandidate {
	return domain.RetrievalCandidate{
		Filename:    str(item, "filename"),
		Content:     str(item, "content"),
		IsTabular:   boolean(item, "isTabular"),
		Score:       additionalCertainty(item),
		Signal:      domain.SignalSemantic,
		ChunkIndex:  integer(item, "chunkIndex"),
		TotalChunks: integer(item, "totalChunks"),
		Summary:     str(item, "summary"),
	}
}

// additionalCertainty reads the nearText certainty, already a
// normalised similarity in [0,1].
func additionalCertainty(item map[string]interface{}) float64 {
	additional, ok := item["_additional"].(map[string]interface{})
	if !ok {
		return 0
	}
	certainty, _ := additional["certainty"].(float64)
	return certainty
}

func str(item map[string]interface{}, key string) string {
	s, _ := item[key].(string)
	return s
}

func boolean(item map[string]interface{}, key string) bool {
	b, _ := item[key].(bool)
	return b
}

func integer(item map[string]interface{}, key string) int {
	f, _ := item[key].(float64)
	return int(f)
}

func strSlice(item map[string]interface{}, key string) []string {
	raw, ok := item[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
