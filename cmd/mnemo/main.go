// Command mnemo is the personal knowledge-memory CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/ai"
	"github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/config/file"
	"github.com/mnemo-labs/mnemo-cli/internal/adapters/driven/storage/sqlite"
	"github.com/mnemo-labs/mnemo-cli/internal/adapters/driving/cli"
	"github.com/mnemo-labs/mnemo-cli/internal/chunker"
	"github.com/mnemo-labs/mnemo-cli/internal/core/services"
	"github.com/mnemo-labs/mnemo-cli/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("data.dir"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close() //nolint:errcheck // Best-effort close on exit

	embedder, err := ai.NewEmbeddingService(cfg)
	if err != nil {
		logger.Warn("embedding provider unavailable: %v", err)
	}

	llm, err := ai.NewLLMService(cfg)
	if err != nil {
		logger.Warn("LLM provider unavailable: %v", err)
	}

	splitter := chunker.New(
		chunker.WithTargetSize(cfg.GetInt("chunk.size")),
		chunker.WithOverlap(cfg.GetInt("chunk.overlap")),
	)

	embedService := services.NewEmbedService(store.SearchStore(), embedder, store.CostLog())
	ingestService := services.NewIngestService(store.ChunkStore(), splitter, embedService)

	searchService := services.NewSearchService(store.SearchStore(), embedder, store.CostLog())
	if k := cfg.GetInt("search.rrf_k"); k > 0 {
		searchService.SetRRFK(k)
	}

	var graphService *services.GraphService
	if llm != nil {
		graphService = services.NewGraphService(store.GraphStore(), llm)
		if prompts, err := file.NewPromptStore(""); err == nil {
			graphService.SetPromptStore(prompts)
		} else {
			logger.Warn("prompt store unavailable: %v", err)
		}
	}

	svcs := cli.Services{
		Memory: ingestService,
		Search: searchService,
		Worker: embedService,
		Chunks: store.ChunkStore(),
		Rows:   store.SearchStore(),
		Config: cfg,
	}
	if graphService != nil {
		svcs.Graph = graphService
	}
	cli.Inject(svcs)

	return cli.Execute()
}
