package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-labs/mnemo-cli/internal/core/ports/driving"
)

var (
	backfillTable string
	backfillBatch int
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embedding worker commands",
	Long:  `Commands for managing embedding vectors on stored rows.`,
}

var embedBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed rows still lacking a vector",
	Long: `Sweeps the searchable tables for rows without an embedding and
embeds them in batches. Rows whose provider call fails are left pending
and picked up by the next sweep.`,
	RunE: runEmbedBackfill,
}

func init() {
	embedBackfillCmd.Flags().StringVar(&backfillTable, "table", "", "single table to sweep (default all)")
	embedBackfillCmd.Flags().IntVar(&backfillBatch, "batch-size", 50, "rows per batch")
	embedCmd.AddCommand(embedBackfillCmd)
	rootCmd.AddCommand(embedCmd)
}

func runEmbedBackfill(cmd *cobra.Command, _ []string) error {
	if embedWorker == nil {
		return errors.New("embedding worker not configured")
	}

	tables := []string{backfillTable}
	if backfillTable == "" {
		if searchStore == nil {
			return errors.New("search store not configured")
		}
		tables = searchStore.Tables()
	}

	total := driving.BackfillReport{}
	for _, table := range tables {
		report, err := embedWorker.Backfill(cmd.Context(), table, backfillBatch)
		if err != nil {
			return fmt.Errorf("backfill of %s failed: %w", table, err)
		}

		cmd.Printf("%s: %d embedded, %d skipped, %d failed\n",
			table, report.Processed, report.Skipped, report.Failed)

		total.Processed += report.Processed
		total.Skipped += report.Skipped
		total.Failed += report.Failed
	}

	if len(tables) > 1 {
		cmd.Printf("Total: %d embedded, %d skipped, %d failed\n",
			total.Processed, total.Skipped, total.Failed)
	}
	return nil
}
