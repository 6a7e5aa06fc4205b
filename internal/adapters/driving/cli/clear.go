package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete everything indexed for the owner",
	Long: `Removes every document, chunk and local shadow row belonging to the
owner namespace. This cannot be undone.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if indexerService == nil {
		return errors.New("indexer service not configured")
	}

	if !clearYes {
		cmd.Printf("This deletes all indexed data for owner %q. Continue? [y/N] ", owner())
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "y" && answer != "Y" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := indexerService.ClearOwnerData(cmd.Context(), owner()); err != nil {
		return fmt.Errorf("clear owner data: %w", err)
	}
	cmd.Printf("Cleared all data for owner %q\n", owner())
	return nil
}
