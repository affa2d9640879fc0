// Package cli implements the mnemo command-line interface using cobra.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driven"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
	"github.com/mnemo-labs/mnemo-cli/internal/logger"
)

// version is the build version, overridable at link time.
var version = "0.1.0"

// Wired services. Set via Inject before Execute; commands check for
// nil and fail with a clear message when a dependency is missing.
var (
	memoryService driving.MemoryService
	searchService driving.SearchService
	graphService  driving.GraphService
	embedWorker   driving.EmbedWorker
	chunkStore    driven.ChunkStore
	searchStore   driven.SearchStore
	configStore   driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "Personal knowledge memory",
	Long: `Mnemo stores documents as searchable, embedded chunks and builds a
knowledge graph of the entities they mention.

Ingested content is deduplicated by content hash, chunked with overlap,
and searchable through hybrid keyword and semantic retrieval.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Services bundles everything the commands need.
type Services struct {
	Memory driving.MemoryService
	Search driving.SearchService
	Graph  driving.GraphService
	Worker driving.EmbedWorker
	Chunks driven.ChunkStore
	Rows   driven.SearchStore
	Config driven.ConfigStore
}

// Inject wires the services into the command tree.
func Inject(s Services) {
	memoryService = s.Memory
	searchService = s.Search
	graphService = s.Graph
	embedWorker = s.Worker
	chunkStore = s.Chunks
	searchStore = s.Rows
	configStore = s.Config
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
