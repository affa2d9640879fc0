package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemo-labs/mnemo-cli/internal/core/domain"
)

var (
	searchLimit  int
	searchJSON   bool
	searchMode   string
	searchTables []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored memories",
	Long: `Performs hybrid search across the stored memory tables.
Combines keyword (BM25) and semantic (vector) rankings with reciprocal
rank fusion. Use --mode vector for pure similarity search.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "hybrid", "search mode (hybrid or vector)")
	searchCmd.Flags().StringSliceVar(&searchTables, "tables", nil, "tables to search (default all)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Mode:       domain.SearchMode(searchMode),
		Tables:     searchTables,
		MatchCount: searchLimit,
	}

	results, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Title - Snippet (Score)
		title := results[i].Title
		if title == "" {
			title = results[i].ID
		}

		cmd.Printf("  [%d] %s (%.4f)\n", i+1, title, results[i].Score)
		cmd.Printf("      Table: %s\n", results[i].Table)
		if snippet := snippetOf(results[i].Content); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}

	return nil
}

// snippetOf returns the first line of content, truncated for display.
func snippetOf(content string) string {
	const maxLen = 120

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			content = content[:i]
			break
		}
	}
	if len(content) > maxLen {
		content = content[:maxLen] + "..."
	}
	return content
}
