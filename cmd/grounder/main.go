package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/corvid-labs/grounder/internal/adapters/driven/shadow/sqlite"
	"github.com/corvid-labs/grounder/internal/adapters/driven/store/weaviate"
	"github.com/corvid-labs/grounder/internal/adapters/driving/cli"
	"github.com/corvid-labs/grounder/internal/chunker"
	"github.com/corvid-labs/grounder/internal/config"
	"github.com/corvid-labs/grounder/internal/core/services"
	"github.com/corvid-labs/grounder/internal/logger"
	"github.com/corvid-labs/grounder/internal/normalisers"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("GROUNDER_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := weaviate.NewStore(weaviate.Config{
		Host:      cfg.Store.Host,
		Scheme:    cfg.Store.Scheme,
		APIKey:    cfg.Store.APIKey,
		OpenAIKey: cfg.Store.OpenAIKey,
	})
	if err != nil {
		return fmt.Errorf("connect vector store: %w", err)
	}

	shadow, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open shadow store: %w", err)
	}
	defer shadow.Close()

	// Best effort: an unreachable store must not stop read commands,
	// which degrade to keyword search over the shadow store.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Debug("Schema check skipped: %v", err)
	}
	cancel()

	c := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.ChunkSize),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)

	indexer := services.NewIndexerService(normalisers.Defaults(), c, store, shadow)
	retriever := services.NewRetrieverService(store, shadow)

	cli.SetServices(indexer, retriever, cfg)
	cli.SetVersion(version)
	return cli.Execute()
}
