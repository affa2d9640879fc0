package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
)

var (
	extractSourceFlag string
	extractLimit      int
	extractBatchSize  int
	extractDryRun     bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Knowledge graph commands",
	Long:  `Commands for extracting and inspecting the entity graph.`,
}

var graphExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract entities and relationships from stored chunks",
	Long: `Runs LLM extraction over stored chunk content, resolving entities
into the graph and upserting their relationships.

With --dry-run the extraction is parsed but nothing is written, which is
useful for previewing what a prompt change would produce.`,
	RunE: runGraphExtract,
}

var graphShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show an entity and its relationships",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphShow,
}

func init() {
	graphExtractCmd.Flags().StringVarP(&extractSourceFlag, "source", "s", "notes", "source whose chunks to extract from")
	graphExtractCmd.Flags().IntVarP(&extractLimit, "limit", "n", 100, "maximum number of chunks to process")
	graphExtractCmd.Flags().IntVar(&extractBatchSize, "batch-size", 0, "facts per LLM call (default 20)")
	graphExtractCmd.Flags().BoolVar(&extractDryRun, "dry-run", false, "parse only, write nothing")
	graphCmd.AddCommand(graphExtractCmd)
	graphCmd.AddCommand(graphShowCmd)
	rootCmd.AddCommand(graphCmd)
}

func runGraphExtract(cmd *cobra.Command, _ []string) error {
	if graphService == nil {
		return errors.New("graph service not configured (set an LLM provider first)")
	}
	if chunkStore == nil {
		return errors.New("chunk store not configured")
	}

	chunks, err := chunkStore.ListChunks(cmd.Context(), extractSourceFlag, extractLimit, 0)
	if err != nil {
		return fmt.Errorf("listing chunks: %w", err)
	}
	if len(chunks) == 0 {
		cmd.Printf("No chunks found for source %q.\n", extractSourceFlag)
		return nil
	}

	facts := make([]string, len(chunks))
	for i := range chunks {
		facts[i] = chunks[i].Content
	}

	cmd.Printf("Extracting from %d chunks...\n", len(facts))

	report, err := graphService.Extract(cmd.Context(), facts, driving.ExtractOptions{
		BatchSize: extractBatchSize,
		DryRun:    extractDryRun,
	})
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	cmd.Printf("Processed %d facts (%d batches failed).\n",
		report.FactsProcessed, report.BatchesFailed)
	if extractDryRun {
		cmd.Printf("Would resolve %d entities and %d edges.\n",
			report.EntitiesResolved, report.EdgesUpserted)
	} else {
		cmd.Printf("Resolved %d entities, upserted %d edges.\n",
			report.EntitiesResolved, report.EdgesUpserted)
	}
	return nil
}

func runGraphShow(cmd *cobra.Command, args []string) error {
	if graphService == nil {
		return errors.New("graph service not configured (set an LLM provider first)")
	}

	neighborhood, err := graphService.Neighbors(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Printf("No entity named %q.\n", args[0])
			return nil
		}
		return fmt.Errorf("lookup failed: %w", err)
	}

	entity := neighborhood.Entity
	cmd.Printf("%s (%s)\n", entity.Name, entity.Type)
	if entity.Description != "" {
		cmd.Printf("  %s\n", entity.Description)
	}
	cmd.Println()

	if len(neighborhood.Outgoing) > 0 {
		cmd.Println("Outgoing:")
		for _, edge := range neighborhood.Outgoing {
			cmd.Printf("  -[%s]-> %s\n", edge.Relation, edge.TargetID)
		}
	}
	if len(neighborhood.Incoming) > 0 {
		cmd.Println("Incoming:")
		for _, edge := range neighborhood.Incoming {
			cmd.Printf("  %s -[%s]->\n", edge.SourceID, edge.Relation)
		}
	}
	if len(neighborhood.Outgoing) == 0 && len(neighborhood.Incoming) == 0 {
		cmd.Println("No relationships recorded.")
	}
	return nil
}
