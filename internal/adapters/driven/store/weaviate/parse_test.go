package weaviate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

func TestDocumentID_Deterministic(t *testing.T) {
	assert.Equal(t,
		documentID("alice", "notes.txt"),
		documentID("alice", "notes.txt"))
	assert.NotEqual(t,
		documentID("alice", "notes.txt"),
		documentID("bob", "notes.txt"))
	assert.NotEqual(t,
		documentID("alice", "notes.txt"),
		chunkID("alice", "notes.txt", 0))
}

func TestExtractObjects(t *testing.T) {
	result := &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]interface{}{
				"GrounderDocument": []interface{}{
					map[string]interface{}{"filename": "a.txt"},
					map[string]interface{}{"filename": "b.txt"},
				},
			},
		},
	}

	items, err := extractObjects(result, "GrounderDocument")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a.txt", items[0]["filename"])
}

func TestExtractObjects_GraphQLError(t *testing.T) {
	result := &models.GraphQLResponse{
		Errors: []*models.GraphQLError{{Message: "class not found"}},
	}

	_, err := extractObjects(result, "GrounderDocument")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class not found")
}

func TestExtractObjects_MissingClass(t *testing.T) {
	result := &models.GraphQLResponse{
		Data: map[string]models.JSONObject{
			"Get": map[string]interface{}{},
		},
	}

	items, err := extractObjects(result, "GrounderDocument")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFirstBatchError(t *testing.T) {
	ok := []models.ObjectsGetResponse{{}}
	assert.NoError(t, firstBatchError(ok))

	failed := []models.ObjectsGetResponse{
		{},
		{Result: &models.ObjectsGetResponseAO2Result{
			Errors: &models.ErrorResponse{
				Error: []*models.ErrorResponseErrorItems0{{Message: "vectorizer down"}},
			},
		}},
	}
	err := firstBatchError(failed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vectorizer down")
}

func TestParseDocument(t *testing.T) {
	doc := parseDocument(map[string]interface{}{
		"ownerId":     "alice",
		"filename":    "budget.csv",
		"fileType":    "spreadsheet",
		"content":     "| a | b |",
		"contentHash": "abc123",
		"isTabular":   true,
		"rowCount":    float64(12),
		"columnNames": []interface{}{"a", "b"},
		"summary":     "Table with 12 rows",
		"structure":   "table:12x2",
		"charCount":   float64(9),
		"createdAt":   "2026-08-01T10:00:00Z",
	})

	assert.Equal(t, "alice", doc.OwnerID)
	assert.Equal(t, "budget.csv", doc.Filename)
	assert.True(t, doc.Metadata.IsTabular)
	assert.Equal(t, 12, doc.Metadata.RowCount)
	assert.Equal(t, []string{"a", "b"}, doc.Metadata.ColumnNames)
	assert.Equal(t, 2026, doc.CreatedAt.Year())
}

func TestChunkCandidate_Certainty(t *testing.T) {
	c := chunkCandidate(map[string]interface{}{
		"filename":    "a.txt",
		"content":     "text",
		"chunkIndex":  float64(1),
		"totalChunks": float64(3),
		"_additional": map[string]interface{}{"certainty": 0.83},
	})

	assert.Equal(t, 0.83, c.Score)
	assert.Equal(t, 1, c.ChunkIndex)
	assert.Equal(t, 3, c.TotalChunks)
}

func TestAdditionalCertainty_Missing(t *testing.T) {
	assert.Zero(t, additionalCertainty(map[string]interface{}{}))
}
