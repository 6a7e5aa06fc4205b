package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/grounder/internal/adapters/driven/shadow/sqlite"
	"github.com/corvid-labs/grounder/internal/adapters/driven/store/memory"
	"github.com/corvid-labs/grounder/internal/chunker"
	"github.com/corvid-labs/grounder/internal/config"
	"github.com/corvid-labs/grounder/internal/core/services"
	"github.com/corvid-labs/grounder/internal/normalisers"
)

// setupTestServices wires the commands to an in-memory store and a
// throwaway shadow database. The returned cleanup restores the
// package-level state so tests stay independent.
func setupTestServices(t *testing.T) (*memory.Store, func()) {
	t.Helper()

	store := memory.NewStore()
	shadow, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)

	indexer := services.NewIndexerService(
		normalisers.Defaults(), chunker.New(), store, shadow)
	retriever := services.NewRetrieverService(store, shadow)
	SetServices(indexer, retriever, config.Default())

	return store, func() {
		indexerService = nil
		retrieverService = nil
		appConfig = nil
		ownerFlag = ""
		verboseFlag = false
		shadow.Close()
	}
}
