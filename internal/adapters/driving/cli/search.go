package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corvid-labs/grounder/internal/core/domain"
)

var (
	searchBudget int
	searchFull   bool
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve grounded context for a query",
	Long: `Runs the retrieval pipeline: filename, semantic and keyword signals
are ranked, deduplicated and packed into a context block bounded by
the character budget.

With --full, retrieval reads the full-document tier and favours few
documents with large slices, for summarisation-style queries.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchBudget, "budget", "b", 0,
		"context budget in characters (0 uses the configured default)")
	searchCmd.Flags().BoolVar(&searchFull, "full", false,
		"assemble from the full-document tier")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false,
		"output the assembled context as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrieverService == nil {
		return errors.New("retriever service not configured")
	}

	budget := searchBudget
	if budget <= 0 && appConfig != nil {
		budget = appConfig.Retrieval.Budget
	}

	mode := domain.ModeTight
	if searchFull {
		mode = domain.ModeFull
	}

	assembled, err := retrieverService.RetrieveContext(
		cmd.Context(), owner(), args[0], budget, mode)
	if err != nil {
		return fmt.Errorf("retrieve context: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(assembled, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal context: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(assembled.Items) == 0 {
		cmd.Println("No matching documents.")
		return nil
	}

	cmd.Println(assembled.Text)
	cmd.Printf("\n-- %d documents, %d chars", len(assembled.Items), assembled.CharCount)
	if assembled.Omitted > 0 {
		cmd.Printf(", %d omitted", assembled.Omitted)
	}
	cmd.Println()
	return nil
}
