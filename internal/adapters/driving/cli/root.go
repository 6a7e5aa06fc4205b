// Package cli implements the grounder command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/corvid-labs/grounder/internal/config"
	"github.com/corvid-labs/grounder/internal/core/ports/driving"
	"github.com/corvid-labs/grounder/internal/logger"
)

// Services wired in by main before Execute runs.
var (
	indexerService   driving.Indexer
	retrieverService driving.Retriever
	appConfig        *config.Config
)

var (
	version = "dev"

	verboseFlag bool
	ownerFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "grounder",
	Short: "Index documents and retrieve grounded context",
	Long: `Grounder indexes uploaded documents into a dual-tier vector store
and assembles budget-bounded context blocks for a conversational agent.

Documents are normalised per format, chunked, and written to both a
full-document tier and a chunk tier. Retrieval combines filename,
semantic and keyword signals.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "",
		"owner namespace (defaults to the configured default_owner)")
}

// SetServices wires the driving ports consumed by the commands.
func SetServices(indexer driving.Indexer, retriever driving.Retriever, cfg *config.Config) {
	indexerService = indexer
	retrieverService = retriever
	appConfig = cfg
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// owner resolves the effective owner namespace.
func owner() string {
	if ownerFlag != "" {
		return ownerFlag
	}
	if appConfig != nil && appConfig.DefaultOwner != "" {
		return appConfig.DefaultOwner
	}
	return "default"
}
