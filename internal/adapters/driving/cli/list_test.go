package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListCmd_Use(t *testing.T) {
	assert.Equal(t, "list", listCmd.Use)
}

func TestListCmd_EmptyIndex(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No documents indexed.")
}

func TestListCmd_ShowsIndexedDocuments(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	indexFixture(t, "report.txt", "quarterly report body")
	indexFixture(t, "summary.md", "executive summary body")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "report.txt")
	assert.Contains(t, buf.String(), "summary.md")
	assert.Contains(t, buf.String(), "2 documents")
}
