package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
	"github.com/mnemo-labs/mnemo-cli/internal/normalisers"
)

var (
	ingestSource string
	ingestTitle  string
	ingestJSON   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Store a document in memory",
	Long: `Reads a document from a file (or stdin when no file is given),
splits it into overlapping chunks, and stores them for retrieval.
Markdown and HTML files are converted to plain text first.

Re-ingesting unchanged content is a no-op: documents are deduplicated
by content hash.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestSource, "source", "s", "", "source label (default notes)")
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output receipt as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if memoryService == nil {
		return errors.New("memory service not configured")
	}

	var (
		content    string
		title      string
		sourcePath string
	)

	if len(args) > 0 {
		sourcePath = args[0]
		raw, err := os.ReadFile(sourcePath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", sourcePath, err)
		}
		title, content = normalisers.ForPath(sourcePath)(sourcePath, raw)
	} else {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		content = string(raw)
	}

	if ingestTitle != "" {
		title = ingestTitle
	}

	receipt, err := memoryService.Ingest(cmd.Context(), domain.IngestRequest{
		Content:    content,
		Source:     ingestSource,
		SourcePath: sourcePath,
		Title:      title,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(receipt, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal receipt: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if receipt.ChunksSkipped > 0 {
		cmd.Printf("Already ingested (hash %.12s), nothing to do.\n", receipt.DocumentHash)
		return nil
	}

	cmd.Printf("Stored %d chunks (hash %.12s).\n", receipt.ChunksCreated, receipt.DocumentHash)
	return nil
}
