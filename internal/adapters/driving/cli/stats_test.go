package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsCmd_Use(t *testing.T) {
	assert.Equal(t, "stats", statsCmd.Use)
}

func TestStatsCmd_CountsObjects(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	indexFixture(t, "a.txt", "content a")
	indexFixture(t, "b.txt", "content b")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"stats"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Documents: 2")
	assert.Contains(t, buf.String(), "Chunks:    2")
}
