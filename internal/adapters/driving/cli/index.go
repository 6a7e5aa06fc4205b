package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/corvid-labs/grounder/internal/core/domain"
	"github.com/corvid-labs/grounder/internal/logger"
)

// indexWorkers bounds concurrent file indexing during directory walks.
const indexWorkers = 4

var indexCmd = &cobra.Command{
	Use:   "index [path]...",
	Short: "Index files or directories",
	Long: `Indexes the given files into the document store. Directories are
walked recursively; files with unsupported extensions are skipped.

Re-indexing a file whose content is unchanged is a no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	var files []string
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			walked, err := collectFiles(path)
			if err != nil {
				return err
			}
			files = append(files, walked...)
		} else {
			files = append(files, path)
		}
	}

	if len(files) == 0 {
		cmd.Println("No files to index.")
		return nil
	}

	type outcome struct {
		file   string
		result domain.IndexResult
		err    error
	}

	var mu sync.Mutex
	outcomes := make([]outcome, 0, len(files))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(indexWorkers)

	for _, file := range files {
		g.Go(func() error {
			result, err := indexFile(ctx, file)
			mu.Lock()
			outcomes = append(outcomes, outcome{file: file, result: result, err: err})
			mu.Unlock()
			// Per-file failures never abort the batch.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var indexed, skipped, failed int
	for _, o := range outcomes {
		switch o.result.Status {
		case domain.IndexStatusIndexed:
			indexed++
			cmd.Printf("  indexed  %s (%d chunks)\n", o.file, o.result.ChunkCount)
		case domain.IndexStatusSkipped:
			skipped++
			cmd.Printf("  skipped  %s (%s)\n", o.file, o.result.Reason)
		default:
			failed++
			cmd.Printf("  failed   %s (%s)\n", o.file, o.result.Reason)
		}
	}

	cmd.Printf("\n%d indexed, %d skipped, %d failed\n", indexed, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func indexFile(ctx context.Context, path string) (domain.IndexResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.IndexResult{
			Status: domain.IndexStatusFailed,
			Reason: "unreadable",
		}, fmt.Errorf("read %s: %w", path, err)
	}
	return indexerService.IndexDocument(ctx, owner(), filepath.Base(path), data)
}

// collectFiles walks dir, returning regular files with supported
// extensions.
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git.
			if name := d.Name(); name != "." && len(name) > 1 && name[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if !supportedExtension(filepath.Ext(path)) {
			logger.Debug("Skipping unsupported file %s", path)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}
