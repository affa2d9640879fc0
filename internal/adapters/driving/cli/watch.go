package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-labs/mnemo-cli/internal/connectors/filesystem"
	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/logger"
	"github.com/mnemo-labs/mnemo-cli/internal/normalisers"
)

var watchSource string

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest files dropped into it",
	Long: `Watches a directory tree and ingests every text file created or
modified under it. Unchanged content is deduplicated by hash, so
repeated saves of the same file are cheap.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchSource, "source", "s", "", "source label for ingested files (default notes)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if memoryService == nil {
		return errors.New("memory service not configured")
	}

	dir := args[0]
	watcher := filesystem.NewWatcher(dir)

	changes, err := watcher.Watch(cmd.Context())
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)...\n", dir)

	for change := range changes {
		title, content := normalisers.ForPath(change.Path)(change.Path, []byte(change.Content))

		receipt, err := memoryService.Ingest(cmd.Context(), domain.IngestRequest{
			Content:    content,
			Source:     watchSource,
			SourcePath: change.Path,
			Title:      title,
		})
		if err != nil {
			if errors.Is(err, domain.ErrEmptyContent) {
				logger.Debug("skipping empty file %s", change.Path)
				continue
			}
			cmd.PrintErrf("ingest of %s failed: %v\n", change.Path, err)
			continue
		}

		if receipt.ChunksSkipped > 0 {
			logger.Debug("%s unchanged, skipped", change.Path)
			continue
		}
		cmd.Printf("Ingested %s (%d chunks).\n", change.Path, receipt.ChunksCreated)
	}

	return nil
}
