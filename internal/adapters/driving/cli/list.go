package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	infos, err := indexerService.ListDocuments(cmd.Context(), owner())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(infos) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	for _, info := range infos {
		shape := fmt.Sprintf("%d chars", info.CharCount)
		if info.IsTabular {
			shape = fmt.Sprintf("%d rows", info.RowCount)
		}
		cmd.Printf("  %-40s %-14s %s\n", info.Filename, info.FileType, shape)
		if info.Summary != "" {
			cmd.Printf("  %-40s %s\n", "", info.Summary)
		}
	}
	cmd.Printf("\n%d documents\n", len(infos))
	return nil
}
