package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corvid-labs/grounder/internal/normalisers"
	"github.com/corvid-labs/grounder/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and keep it indexed",
	Long: `Watches the directory and mirrors it into the index: new and
modified files are indexed, removed files are deleted. Runs until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(indexerService, owner(),
		normalisers.Defaults().SupportedExtensions())

	cmd.Printf("Watching %s (owner %q), press Ctrl-C to stop\n", dir, owner())
	if err := w.Watch(ctx, dir); err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	return nil
}
